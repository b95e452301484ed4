package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/config"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapgen"
	"github.com/annel0/mmo-collision/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации")
		command    = flag.String("cmd", "list", "Command: gen, list, delete, export-antibot, token, secret")
		name       = flag.String("name", "", "Имя карты (по умолчанию map.name из конфига)")
		seed       = flag.Int64("seed", 0, "Сид генерации (по умолчанию map.seed)")
		width      = flag.Int("width", 0, "Ширина карты в клетках")
		height     = flag.Int("height", 0, "Высота карты в клетках")
		platforms  = flag.Int("platforms", -1, "Число движущихся платформ")
		out        = flag.String("out", "", "Файл для export-antibot")
		operator   = flag.String("operator", "", "Имя оператора для token")
		canEdit    = flag.Bool("edit", false, "Токен с правом правки карты")
		ttl        = flag.Duration("ttl", auth.DefaultTTL, "Срок жизни токена")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	// Инструмент пишет только предупреждения и ошибки
	logging.SetDefaultLevel(logging.WARN)

	mapCfg := cfg.Map
	if *name != "" {
		mapCfg.Name = *name
	}
	if *seed != 0 {
		mapCfg.Seed = *seed
	}
	if *width > 0 {
		mapCfg.Width = *width
	}
	if *height > 0 {
		mapCfg.Height = *height
	}

	switch *command {
	case "gen":
		err = withStore(cfg.Storage.Path, func(store *storage.MapStore) error {
			return generate(store, mapCfg, *platforms)
		})
	case "list":
		err = withStore(cfg.Storage.Path, listMaps)
	case "delete":
		err = withStore(cfg.Storage.Path, func(store *storage.MapStore) error {
			if err := store.Delete(mapCfg.Name); err != nil {
				return err
			}
			fmt.Printf("🗑️  Map %s deleted\n", mapCfg.Name)
			return nil
		})
	case "export-antibot":
		err = withStore(cfg.Storage.Path, func(store *storage.MapStore) error {
			return exportAntibot(store, cfg, mapCfg.Name, *out)
		})
	case "token":
		err = issueToken(cfg.Server.GetAuthSecret(), *operator, *canEdit, *ttl)
	case "secret":
		var secret string
		secret, err = auth.GenerateSecureSecret()
		if err == nil {
			fmt.Println(secret)
		}
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: gen, list, delete, export-antibot, token, secret")
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

func withStore(path string, fn func(store *storage.MapStore) error) error {
	store, err := storage.NewMapStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// generate строит карту по сиду и сохраняет ее в хранилище
func generate(store *storage.MapStore, cfg config.MapConfig, platforms int) error {
	gen := mapgen.NewGenerator(cfg.Seed)
	if platforms >= 0 {
		gen.Platforms = platforms
	}
	m := gen.Generate(cfg.Name, cfg.Width, cfg.Height)

	record, err := store.Save(m)
	if err != nil {
		return err
	}
	fmt.Printf("🌱 Map %s generated: %dx%d, seed=%d, %d bytes, generation %s\n",
		record.Name, record.Width, record.Height, cfg.Seed, record.Size, record.Generation)
	return nil
}

// listMaps выводит сохраненные карты
func listMaps(store *storage.MapStore) error {
	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("📭 No maps stored")
		return nil
	}

	fmt.Printf("%-20s %-9s %-10s %-36s %s\n", "NAME", "SIZE", "BYTES", "GENERATION", "SAVED")
	for _, r := range records {
		fmt.Printf("%-20s %-9s %-10d %-36s %s\n",
			r.Name, fmt.Sprintf("%dx%d", r.Width, r.Height), r.Size, r.Generation, r.SavedAt.Format(time.RFC3339))
	}
	return nil
}

// exportAntibot пишет сжатую сетку карты для античита
func exportAntibot(store *storage.MapStore, cfg *config.Config, name, out string) error {
	if out == "" {
		out = name + ".antibot"
	}

	m, err := store.Load(name)
	if err != nil {
		return err
	}
	coll := collision.New(cfg.Physics.CollisionOptions(), logging.NewNopLogger())
	if err := coll.Init(m); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := coll.ExportAntibot(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("🛡️  Antibot grid of %s written to %s\n", name, out)
	return nil
}

// issueToken выпускает токен оператора отладочного API
func issueToken(secret, operator string, canEdit bool, ttl time.Duration) error {
	if secret == "" {
		return fmt.Errorf("server.auth_secret или COLLISION_AUTH_SECRET не задан")
	}
	if operator == "" {
		return fmt.Errorf("не задан -operator")
	}

	issuer, err := auth.NewTokenIssuer(secret, ttl)
	if err != nil {
		return err
	}
	token, err := issuer.Issue(operator, canEdit)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
