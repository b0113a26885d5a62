package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'blue-shirt' for key 'uq_products_slug'"}
	if !isDuplicateKey(dup) {
		t.Error("error 1062 not recognised as duplicate key")
	}
	if !isDuplicateKey(fmt.Errorf("insert product: %w", dup)) {
		t.Error("wrapped error 1062 not recognised as duplicate key")
	}

	if isDuplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}) {
		t.Error("deadlock error treated as duplicate key")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Error("plain error treated as duplicate key")
	}
	if isDuplicateKey(nil) {
		t.Error("nil error treated as duplicate key")
	}
}
