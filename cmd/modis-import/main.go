// Command modis-import loads MODIS fire-pixel samples from CSV files into the
// SQLite sample database used by modis-temperature.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/i474232898/modis-temperature/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	defaultPath := os.Getenv("DB_PATH")
	if defaultPath == "" {
		defaultPath = "modis.db"
	}

	dbPath := flag.String("db", defaultPath, "path to the SQLite sample database")
	batch := flag.Int("batch", 1000, "rows per insert transaction")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.csv [file.csv...]\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "columns: lat,lon,fp_t31,fp_t21 (empty channel = absent)")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open sample database: %v", err)
	}
	defer database.Close()

	total := 0
	for _, path := range flag.Args() {
		n, err := importFile(ctx, database, path, *batch)
		total += n
		if err != nil {
			log.Printf("ERROR: %s: %v", path, err)
			database.Close()
			os.Exit(1)
		}
		log.Printf("INFO: %s: %d samples", path, n)
	}

	count, err := database.CountSamples(ctx)
	if err != nil {
		log.Fatalf("failed to count samples: %v", err)
	}
	log.Printf("INFO: imported %d samples; database now holds %d", total, count)
}

func importFile(ctx context.Context, database *db.DB, path string, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return database.ImportCSV(ctx, f, batch)
}
