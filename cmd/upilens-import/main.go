// Command upilens-import imports statement files into the database and
// exports the stored transactions as CSV, without running the server.
//
// Usage:
//
//	upilens-import -in statement.pdf
//	upilens-import -in january.csv -rules rules.yaml
//	upilens-import -out transactions.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"upilens/internal/categorize"
	"upilens/internal/cli"
	"upilens/internal/config"
	"upilens/internal/export"
	"upilens/internal/log"
	"upilens/internal/services"
	"upilens/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	var (
		inPath    = flag.String("in", "", "statement file to import (PDF or CSV)")
		outPath   = flag.String("out", "", "write all stored transactions to this CSV file")
		dbPath    = flag.String("db", "", "sqlite database path (defaults to SQLITE_DB_PATH)")
		rulesPath = flag.String("rules", "", "category rules YAML (defaults to embedded rules)")
	)
	flag.Parse()

	if *inPath == "" && *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *dbPath == "" {
		*dbPath = cfg.SQLiteDBPath
	}

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		logger.Error("failed to open database", log.FieldError, err, "path", *dbPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	if *inPath != "" {
		if err := runImport(ctx, repo, *inPath, *rulesPath, logger); err != nil {
			logger.Error("import failed", log.FieldError, err, log.FieldSourceFile, *inPath)
			os.Exit(1)
		}
	}

	if *outPath != "" {
		if err := runExport(ctx, repo, *outPath); err != nil {
			logger.Error("export failed", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("transactions exported", "path", *outPath)
	}
}

func runImport(ctx context.Context, repo *storage.SQLiteRepository, path, rulesPath string, logger *log.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	categorizer := categorize.NewDefault()
	if rulesPath != "" {
		rules, err := categorize.LoadRuleset(rulesPath)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		categorizer = categorize.New(rules)
	}

	// no AMQP here: the worker's sweep indexes the document later
	ingest := services.NewIngestService(repo, categorizer, nil)
	doc, txs, err := ingest.Ingest(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	logger.Info("statement imported",
		log.FieldDocumentID, doc.ID,
		log.FieldSourceFile, doc.Filename,
		log.FieldTxCount, len(txs))
	return nil
}

func runExport(ctx context.Context, repo *storage.SQLiteRepository, path string) error {
	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, txs); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
