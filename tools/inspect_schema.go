package main

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/sportfed/internal/database"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type='index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, idx := range indexes {
			fmt.Println(idx)
		}
	}
}
