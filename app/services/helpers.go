package services

import (
	"fmt"

	"github.com/shashiranjanraj/marmita/pkg/orm"
)

// notFoundOr maps a record-not-found error to sentinel and wraps anything
// else with op.
func notFoundOr(err, sentinel error, op string) error {
	if orm.IsNotFound(err) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}
