package main

import (
	"context"
	"fmt"

	"loans-backend/internal/app"
	"loans-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}

	fiberApp, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}

	// Verify connections before printing startup logs
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			panic("postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("postgres connection failed: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			panic("redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}

	fmt.Printf("Loans service starting on port %s\n", cfg.Port)
	fmt.Println("Dependencies:")
	fmt.Printf("  - Customer Service: %s\n", cfg.CustomerServiceURL)
	fmt.Printf("  - Property Service: %s\n", cfg.PropertyServiceURL)

	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		panic(err)
	}
}
