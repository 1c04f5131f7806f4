// Command ingest fetches customer documents from an HTTP endpoint and
// seeds the MongoDB collection the pipeline reads from, or writes them to
// a CSV snapshot for offline runs.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"loyaltyml/internal/cfg"
	"loyaltyml/internal/dataset"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// customerDoc is the wire format served by the export endpoint and stored
// in the collection.
type customerDoc struct {
	CustID        int      `json:"custid" bson:"custid"`
	Category      string   `json:"category" bson:"category"`
	Income        *float64 `json:"householdincome" bson:"householdincome"`
	HouseholdSize float64  `json:"householdsize" bson:"householdsize"`
	Education     float64  `json:"educationlevel" bson:"educationlevel"`
	Gender        string   `json:"gender" bson:"gender"`
}

func main() {
	var (
		url      = flag.String("url", "", "HTTP endpoint serving customer documents as a JSON array")
		csvOut   = flag.String("csv", "", "Write fetched documents to this CSV snapshot instead of MongoDB")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		timeout  = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	if *url == "" {
		log.Fatal().Msg("-url is required")
	}

	docs, err := fetchDocuments(*url, *timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch documents")
	}
	log.Info().Int("documents", len(docs)).Msg("Fetched customer documents")

	if err := validate(docs); err != nil {
		log.Fatal().Err(err).Msg("Fetched documents failed validation")
	}

	if *csvOut != "" {
		if err := writeCSV(docs, *csvOut); err != nil {
			log.Fatal().Err(err).Msg("Failed to write CSV snapshot")
		}
		log.Info().Str("path", *csvOut).Msg("Snapshot written")
		return
	}

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := insertMongo(docs, settings); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert documents")
	}
	log.Info().
		Str("database", settings.Database).
		Str("collection", settings.Collection).
		Int("documents", len(docs)).
		Msg("Documents inserted")
}

func fetchDocuments(url string, timeout time.Duration) ([]customerDoc, error) {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second)

	var docs []customerDoc
	resp, err := client.R().
		SetResult(&docs).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("endpoint returned %s", resp.Status())
	}
	return docs, nil
}

// validate checks every document against the fixed label enumerations and
// the unique-id invariant before anything is written.
func validate(docs []customerDoc) error {
	seen := make(map[int]bool, len(docs))
	for i, d := range docs {
		if _, ok := dataset.CategoryLabels[d.Category]; !ok {
			return fmt.Errorf("document %d: unknown category label %q", i, d.Category)
		}
		if _, ok := dataset.GenderLabels[d.Gender]; !ok {
			return fmt.Errorf("document %d: unknown gender label %q", i, d.Gender)
		}
		if seen[d.CustID] {
			return fmt.Errorf("document %d: duplicate custid %d", i, d.CustID)
		}
		seen[d.CustID] = true
	}
	return nil
}

func writeCSV(docs []customerDoc, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"custid", "category", "householdincome", "householdsize", "educationlevel", "gender"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, d := range docs {
		income := ""
		if d.Income != nil {
			income = strconv.FormatFloat(*d.Income, 'f', -1, 64)
		}
		row := []string{
			strconv.Itoa(d.CustID),
			d.Category,
			income,
			strconv.FormatFloat(d.HouseholdSize, 'f', -1, 64),
			strconv.FormatFloat(d.Education, 'f', -1, 64),
			d.Gender,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

func insertMongo(docs []customerDoc, settings cfg.Settings) error {
	ctx, cancel := context.WithTimeout(context.Background(), settings.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(settings.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = client.Disconnect(closeCtx)
	}()

	collection := client.Database(settings.Database).Collection(settings.Collection)

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "custid", Value: d.CustID}}).
			SetReplacement(d).
			SetUpsert(true))
	}

	writeCtx, writeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer writeCancel()

	if _, err := collection.BulkWrite(writeCtx, models); err != nil {
		return fmt.Errorf("bulk write failed: %w", err)
	}
	return nil
}
