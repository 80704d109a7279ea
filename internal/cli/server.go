package cli

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/app"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/config"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/memory"
	pgcatalogue "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/postgres"
	redisinfra "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/redis"
	transport "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogueLoader = memory.NewStaticCatalogueLoader(sampleCatalogue())
	if pool != nil {
		loader = pgcatalogue.NewCatalogueLoader(pool)
	}
	catalogueTTL := config.TTLDuration(cfg.Catalogue.TTL, 10*time.Minute)
	catalogue := memory.NewCatalogueRepository(loader, catalogueTTL)

	var solved app.SolvedStore = memory.NewSolvedStore()
	var scores app.HighScoreStore = memory.NewHighScoreStore()
	if redisClient != nil {
		solved = redisinfra.NewSolvedStore(redisClient)
		scores = redisinfra.NewHighScoreStore(redisClient)
	}

	service := app.NewGameService(memory.NewRoundStore(), catalogue, solved, scores)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/highscores", func(w http.ResponseWriter, r *http.Request) {
		entries, err := service.HighScores(r.Context(), 10)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz game server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogue keeps the server playable without postgres; swap in the
// JSONB-backed loader by configuring a database URL.
func sampleCatalogue() []domain.Question {
	return []domain.Question{
		{
			ID: 1, Type: domain.TypeQuiz, Grade: 5, Topic: "Kültür ve Miras",
			Difficulty: domain.DifficultyEasy, Subject: "sosyal bilgiler",
			Prompt:  "Anadolu'da kurulan ilk uygarlıklardan biri hangisidir?",
			Options: []string{"Hititler", "Vikingler", "Aztekler", "Moğollar"},
			Answer:  "Hititler",
		},
		{
			ID: 2, Type: domain.TypeQuiz, Grade: 5, Topic: "Kültür ve Miras",
			Difficulty: domain.DifficultyMedium, Subject: "sosyal bilgiler",
			Prompt:  "İstanbul'un fethi hangi yılda gerçekleşmiştir?",
			Options: []string{"1453", "1071", "1923", "1299"},
			Answer:  "1453",
		},
		{
			ID: 3, Type: domain.TypeQuiz, Grade: 5, Topic: "İnsanlar, Yerler ve Çevreler",
			Difficulty: domain.DifficultyEasy, Subject: "sosyal bilgiler",
			Prompt:  "Türkiye'nin en kalabalık şehri hangisidir?",
			Options: []string{"İstanbul", "Ankara", "İzmir", "Bursa"},
			Answer:  "İstanbul",
		},
		{
			ID: 4, Type: domain.TypeFillIn, Grade: 5, Topic: "Etkin Vatandaşlık",
			Difficulty: domain.DifficultyEasy, Subject: "sosyal bilgiler",
			Sentence:    "Türkiye Büyük Millet Meclisi ____ yılında açılmıştır.",
			Answer:      "1920",
			Distractors: []string{"1918", "1923", "1938"},
		},
		{
			ID: 5, Type: domain.TypeMatching, Grade: 5, Topic: "İnsanlar, Yerler ve Çevreler",
			Difficulty: domain.DifficultyMedium, Subject: "sosyal bilgiler",
			Instruction: "Bölgeleri özellikleriyle eşleştirin.",
			Pairs: []domain.Pair{
				{Term: "Karadeniz", Definition: "Bol yağışlı iklim"},
				{Term: "İç Anadolu", Definition: "Karasal iklim"},
				{Term: "Akdeniz", Definition: "Yazları sıcak ve kurak"},
			},
		},
	}
}
