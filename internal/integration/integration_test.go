package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/app"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/memory"
	pgloader "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/postgres"
	pgmigrations "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/postgres/migrations"
	infraredis "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/infra/redis"
)

func TestClassicRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalogue := memory.NewCatalogueRepository(pgloader.NewCatalogueLoader(pool), 5*time.Minute)
	solved := infraredis.NewSolvedStore(redisClient)
	scores := infraredis.NewHighScoreStore(redisClient)
	service := app.NewGameService(memory.NewRoundStore(), catalogue, solved, scores)

	settings := domain.GameSettings{
		Grade:       5,
		Topic:       "Kültür ve Miras",
		Competition: domain.CompetitionSolo,
		GameMode:    domain.ModeQuiz,
		QuizMode:    domain.QuizClassic,
		PlayerName:  "Ayşe",
	}
	res, err := service.StartRound(ctx, "round-1", settings)
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if res.Empty || res.QuestionCount != 2 {
		t.Fatalf("expected 2 questions drawn from postgres, got %+v", res)
	}

	round, err := service.Round("round-1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	round.Start()
	for i := 0; i < 2; i++ {
		q, ok := round.QuestionAt(i)
		if !ok {
			t.Fatalf("missing question %d", i)
		}
		result, err := round.SubmitAnswer(q.Answer)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if !result.Correct || result.Awarded == 0 {
			t.Fatalf("expected scored answer, got %+v", result)
		}
		if err := round.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if !round.Finished() {
		t.Fatalf("expected finished round")
	}
	finalScore, _ := round.FinalScore()

	// solved marking and result recording run off the engine goroutine
	waitFor(t, func() bool {
		ids, err := solved.SolvedIDs(ctx)
		return err == nil && len(ids) == 2
	})
	waitFor(t, func() bool {
		top, err := scores.Top(ctx, 10)
		return err == nil && len(top) == 1
	})
	top, err := scores.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top[0].Name != "Ayşe" || top[0].Score != finalScore {
		t.Fatalf("expected recorded result for Ayşe with %d points, got %+v", finalScore, top[0])
	}

	// a fresh round over the same settings skips the solved questions
	res, err = service.StartRound(ctx, "round-2", settings)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !res.Empty {
		t.Fatalf("expected solved questions excluded, got %+v", res)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func waitFor(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO questions (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, q.ID, string(data)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:         1,
			Type:       domain.TypeQuiz,
			Grade:      5,
			Topic:      "Kültür ve Miras",
			Difficulty: domain.DifficultyEasy,
			Subject:    "sosyal bilgiler",
			Prompt:     "Osmanlı Devleti'nin başkenti hangisidir?",
			Options:    []string{"İstanbul", "Ankara", "Bursa", "Edirne"},
			Answer:     "İstanbul",
		},
		{
			ID:         2,
			Type:       domain.TypeQuiz,
			Grade:      5,
			Topic:      "Kültür ve Miras",
			Difficulty: domain.DifficultyMedium,
			Subject:    "sosyal bilgiler",
			Prompt:     "Anadolu'nun ilk Türk beyliklerinden biri hangisidir?",
			Options:    []string{"Danişmentliler", "Osmanlılar", "Safeviler", "Akkoyunlular"},
			Answer:     "Danişmentliler",
		},
	}
}
