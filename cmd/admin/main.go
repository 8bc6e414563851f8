package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/storage"
)

// Operator CLI for poking at the message store directly: inspect what the
// relay has retained, or force a purge without waiting for the sweep.
func main() {
	cfg := config.Load()
	log := cfg.NewLogger()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	store := storage.NewService(db, log)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: history [limit], purge [minutes]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "history":
		limit := 50
		if len(os.Args) > 2 {
			limit, err = strconv.Atoi(os.Args[2])
			if err != nil || limit <= 0 {
				fmt.Println("Invalid limit. Please provide a positive integer.")
				os.Exit(1)
			}
		}
		msgs, err := store.RecentMessages(limit)
		if err != nil {
			log.Fatal().Err(err).Msg("error loading history")
		}
		for _, m := range msgs {
			fmt.Printf("[%s] #%d %s: %s\n", m.CreatedAt.Format(time.RFC3339), m.ID, m.Username, m.Body)
		}

	case "purge":
		minutes := int(cfg.RetentionWindow.Minutes())
		if len(os.Args) > 2 {
			minutes, err = strconv.Atoi(os.Args[2])
			if err != nil || minutes < 0 {
				fmt.Println("Invalid minutes. Please provide a non-negative integer.")
				os.Exit(1)
			}
		}
		cutoff := time.Now().Add(-time.Duration(minutes) * time.Minute)
		n, err := store.DeleteMessagesBefore(cutoff)
		if err != nil {
			log.Fatal().Err(err).Msg("error purging messages")
		}
		fmt.Printf("Deleted %d messages older than %d minutes.\n", n, minutes)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
