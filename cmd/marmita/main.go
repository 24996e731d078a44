// Command marmita serves the marketplace and manages its database.
//
//	marmita migrate
//	marmita seed
//	marmita serve
//	marmita queue:failed
package main

import (
	"fmt"
	"os"

	"github.com/shashiranjanraj/marmita/app/controllers"
	"github.com/shashiranjanraj/marmita/app/listeners"
	"github.com/shashiranjanraj/marmita/app/routes"
	_ "github.com/shashiranjanraj/marmita/database/migrations"
	"github.com/shashiranjanraj/marmita/database/seeders"
	"github.com/shashiranjanraj/marmita/pkg/app"
	"github.com/shashiranjanraj/marmita/pkg/broker"
	"github.com/shashiranjanraj/marmita/pkg/mail"
)

func main() {
	svc := controllers.NewServices()
	register, err := routes.Register(svc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := app.New().
		Routes(register).
		Seeder(seeders.RunAll).
		Listeners(func(pub broker.Publisher) func() {
			return listeners.Register(listeners.Options{
				Publisher: pub,
				Hub:       svc.Live,
				Mailer:    mail.Default(),
			})
		}).
		Command()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
