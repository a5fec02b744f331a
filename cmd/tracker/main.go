package main

import (
	"fmt"
	"log"
	"os"

	"fueltrack-backend/internal/config"
	"fueltrack-backend/internal/tracker"
	"fueltrack-backend/pkg/database"
	"fueltrack-backend/pkg/logger"
	"fueltrack-backend/pkg/storage"
)

func main() {
	cfg := config.Load()

	zapLog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLog.Sync()

	backend := buildBackend(cfg)
	store := tracker.NewStore(backend, zapLog)

	if err := run(store, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildBackend picks the persistence collaborator from configuration.
// Anything unavailable degrades to memory-only operation.
func buildBackend(cfg *config.Config) storage.Backend {
	switch cfg.StorageBackend {
	case "redis":
		client, err := storage.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Redis unavailable, running memory-only: %v", err)
			return nil
		}
		return storage.NewRedisBackend(client, cfg.KeyPrefix)
	case "mongo":
		if cfg.MongoURI == "" {
			log.Print("MONGO_URI not set, running memory-only")
			return nil
		}
		db, err := database.Connect(cfg.MongoURI)
		if err != nil {
			log.Printf("MongoDB unavailable, running memory-only: %v", err)
			return nil
		}
		return storage.NewMongoBackend(db)
	default:
		return storage.NewMemoryBackend()
	}
}

func run(store *tracker.Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tracker <vehicles|stats|export|import|clear> [args]")
	}

	switch args[0] {
	case "vehicles":
		for _, v := range store.GetAllVehicles() {
			fmt.Printf("%s\t%s\t%s\tdistance=%.2f\tfuel=%.2f\n",
				v.ID, v.Name, v.FuelType, v.TotalDistance, v.TotalFuelConsumed)
		}
		return nil

	case "stats":
		if len(args) < 2 {
			return fmt.Errorf("usage: tracker stats <vehicleID>")
		}
		stats := store.GetConsumptionStats(args[1])
		fmt.Printf("records=%d distance=%.2f fuel=%.2f avg=%.2f min=%.2f max=%.2f\n",
			stats.Count, stats.TotalDistance, stats.TotalFuel,
			stats.AverageConsumption, stats.MinConsumption, stats.MaxConsumption)
		return nil

	case "export":
		data, err := store.ExportData()
		if err != nil {
			return err
		}
		if len(args) > 1 {
			return os.WriteFile(args[1], []byte(data), 0644)
		}
		fmt.Println(data)
		return nil

	case "import":
		if len(args) < 2 {
			return fmt.Errorf("usage: tracker import <file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		snapshot, err := store.ImportData(string(data))
		if err != nil {
			return err
		}
		fmt.Printf("imported %d vehicles, %d records\n",
			len(snapshot.Vehicles), len(snapshot.Records))
		return nil

	case "clear":
		store.ClearAllData()
		fmt.Println("all data cleared")
		return nil

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
