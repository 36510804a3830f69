// Command shelfctl runs privileged maintenance tasks directly against the
// HypeShelf database: bootstrapping the first admin, backfilling staff
// picks, seeding demo data and applying migrations.
//
// It bypasses the HTTP API and its authorization checks, so it is meant for
// operators with access to the database file only.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
