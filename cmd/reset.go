package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	confirmReset bool
	resetRedis   bool
	resetDB      bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset activity streams and/or the case database",
	Long: `Reset command clears the Redis activity streams and/or the SQLite
case database.

By default, both are reset. You can selectively reset only the streams or
only the database using the --redis-only or --db-only flags.

WARNING: This operation is irreversible and will permanently delete all cases.

Examples:
  # Reset both streams and database (requires confirmation)
  legalease reset

  # Reset with automatic confirmation
  legalease reset --yes

  # Reset only the Redis streams
  legalease reset --redis-only

  # Reset only the database
  legalease reset --db-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only the Redis streams")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Determine what to reset
	resetBoth := !resetRedis && !resetDB
	if resetBoth {
		resetRedis = true
		resetDB = true
	}

	// Show what will be reset
	var targets []string
	if resetRedis {
		targets = append(targets, "Redis activity streams")
	}
	if resetDB {
		targets = append(targets, "SQLite case database")
	}

	fmt.Printf("This will permanently delete: %s\n", strings.Join(targets, " and "))

	// Confirm operation unless --yes flag is used
	if !confirmReset {
		fmt.Print("Are you sure you want to continue? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
			fmt.Println("Reset operation cancelled.")
			return nil
		}
	}

	if resetRedis {
		if err := resetRedisStreams(ctx); err != nil {
			fmt.Printf("Warning: Failed to reset Redis streams: %v\n", err)
			if !resetDB {
				return fmt.Errorf("failed to reset Redis streams: %w", err)
			}
		} else {
			fmt.Println("✓ Redis streams cleared successfully")
		}
	}

	if resetDB {
		if err := resetDatabase(); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		fmt.Println("✓ Database cleared successfully")
	}

	fmt.Println("Reset operation completed successfully!")
	return nil
}

func resetRedisStreams(ctx context.Context) error {
	redisURL := viper.GetString("redis.url")
	if redisURL == "" {
		return fmt.Errorf("no Redis URL configured")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Only touch this application's keys, never the whole database.
	keys, err := client.Keys(ctx, "legalease:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list Redis keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Println("No Redis streams found to clear")
		return nil
	}

	fmt.Printf("Clearing %d Redis keys/streams...\n", len(keys))

	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis keys: %w", err)
	}

	return nil
}

func resetDatabase() error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "./data/legalease.db"
	}

	// Remove SQLite database files
	dbFiles := []string{
		dbPath,
		dbPath + "-shm", // Shared memory file
		dbPath + "-wal", // Write-ahead log file
	}

	var removedFiles []string
	for _, file := range dbFiles {
		if _, err := os.Stat(file); err == nil {
			if err := os.Remove(file); err != nil {
				return fmt.Errorf("failed to remove database file %s: %w", file, err)
			}
			removedFiles = append(removedFiles, filepath.Base(file))
		}
	}

	if len(removedFiles) == 0 {
		fmt.Println("No database files found to remove")
		return nil
	}

	fmt.Printf("Removed database files: %s\n", strings.Join(removedFiles, ", "))
	return nil
}
