// Command seed loads METAR and TAF JSON documents from fixture directories
// into the report store. Each *.json file holds one report or an array of
// reports in the ingestion payload shape.
//
// Usage:
//
//	go run ./cmd/seed \
//	  -airport EHAM \
//	  -metar-dir testdata/metar \
//	  -taf-dir testdata/taf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/met-update-db/internal/adapter/mongo"
	"github.com/couchcryptid/met-update-db/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	airport := flag.String("airport", "", "ICAO code the fixtures belong to")
	metarDir := flag.String("metar-dir", "", "directory of METAR JSON fixtures")
	tafDir := flag.String("taf-dir", "", "directory of TAF JSON fixtures")
	mongoURI := flag.String("mongo-uri", sharedcfg.EnvOrDefault("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	database := flag.String("database", sharedcfg.EnvOrDefault("MONGO_DATABASE", "met_update"), "MongoDB database name")
	flag.Parse()

	if *airport == "" || (*metarDir == "" && *tafDir == "") {
		flag.Usage()
		return fmt.Errorf("missing required flags: -airport and at least one of -metar-dir, -taf-dir")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := mongo.Connect(ctx, *mongoURI, *database, 10*time.Second)
	if err != nil {
		return err
	}
	defer repo.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	if *metarDir != "" {
		n, err := seedDir(*metarDir, func(doc []byte) error {
			metar, err := domain.ParseMetar(*airport, doc)
			if err != nil {
				return err
			}
			return repo.InsertMetar(ctx, metar)
		})
		if err != nil {
			return fmt.Errorf("seeding METARs: %w", err)
		}
		log.Printf("metar: %d reports", n)
	}

	if *tafDir != "" {
		n, err := seedDir(*tafDir, func(doc []byte) error {
			taf, err := domain.ParseTaf(*airport, doc)
			if err != nil {
				return err
			}
			return repo.InsertTaf(ctx, taf)
		})
		if err != nil {
			return fmt.Errorf("seeding TAFs: %w", err)
		}
		log.Printf("taf: %d reports", n)
	}

	return nil
}

// seedDir calls insert for every document in the directory's JSON files in
// file name order and returns how many were inserted.
func seedDir(dir string, insert func(doc []byte) error) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	var count int
	for _, path := range paths {
		docs, err := readDocuments(path)
		if err != nil {
			return count, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for i, doc := range docs {
			if err := insert(doc); err != nil {
				return count, fmt.Errorf("%s[%d]: %w", filepath.Base(path), i, err)
			}
			count++
		}
	}
	return count, nil
}

// readDocuments returns the file's single object, or each element of its
// top-level array.
func readDocuments(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return []json.RawMessage{doc}, nil
}
