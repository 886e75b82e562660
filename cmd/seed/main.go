package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"interviewbot/internal/config"
	"interviewbot/internal/logger"
	"interviewbot/internal/model"
	"interviewbot/internal/repository"
)

type seedFile struct {
	Templates []*model.Template `yaml:"templates"`
}

// loadTemplates parses and validates a YAML template file
func loadTemplates(r io.Reader) ([]*model.Template, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("no templates in file")
	}

	seen := map[string]bool{}
	for i, tpl := range file.Templates {
		tpl.Normalize()
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		if strings.TrimSpace(tpl.ID) == "" {
			return nil, fmt.Errorf("template %q: missing id", tpl.Name)
		}
		if seen[tpl.ID] {
			return nil, fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		seen[tpl.ID] = true
	}
	return file.Templates, nil
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	path := "templates/templates.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open seed file", "path", path, "error", err)
	}
	templates, err := loadTemplates(f)
	f.Close()
	if err != nil {
		log.Fatal("invalid seed file", "path", path, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", "error", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewTemplateRepo(client.Database(cfg.MongoDB))
	for _, tpl := range templates {
		if err := repo.Upsert(ctx, tpl); err != nil {
			log.Fatal("failed to seed template", "id", tpl.ID, "error", err)
		}
		log.Info("seeded template", "id", tpl.ID, "name", tpl.Name, "fields", len(tpl.Fields))
	}
	log.Info("seeding complete", "templates", len(templates))
}
