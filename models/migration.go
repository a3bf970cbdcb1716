package models

import (
	"log"

	"github.com/solarpark-se/members_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Member{}, &Share{}, &Economics{},
		&Payment{}, &Dividend{},
		&ErrorLog{}, &Lead{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
