// Package repositories holds the queries of the application. Each repository
// runs on the shared connection unless bound to a transaction with WithTx.
package repositories

import (
	"context"

	"github.com/shashiranjanraj/marmita/pkg/orm"
)

type base struct {
	tx *orm.Query
}

func (b base) q(ctx context.Context) *orm.Query {
	if b.tx != nil {
		return b.tx.WithContext(ctx)
	}
	return orm.DB().WithContext(ctx)
}
