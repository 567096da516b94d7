package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "scriptorium-backend/internal/auth"
	"scriptorium-backend/internal/documents"
	"scriptorium-backend/internal/pipeline"
	"scriptorium-backend/internal/projects"
	"scriptorium-backend/internal/shared/config"
	"scriptorium-backend/internal/shared/server"
	"scriptorium-backend/internal/shared/storage/db"
	"scriptorium-backend/internal/shared/storage/object"
	localstore "scriptorium-backend/internal/shared/storage/object/local"
	s3store "scriptorium-backend/internal/shared/storage/object/s3"
	"scriptorium-backend/internal/synthesis"
	"scriptorium-backend/internal/tts"
	"scriptorium-backend/internal/tts/elevenlabs"
	"scriptorium-backend/internal/users"
	"scriptorium-backend/internal/voices"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	TTS    tts.Provider

	ProjectsRepo  projects.Repo
	DocumentsRepo documents.Repo
	VoicesRepo    voices.Repo
	SynthesisRepo synthesis.Repo
	UsersRepo     users.Repo

	ProjectsService  *projects.Service
	DocumentsService *documents.Service
	VoicesService    *voices.Service
	SynthesisService *synthesis.Service
	UsersService     *users.Service
	Coordinator      *pipeline.Coordinator

	ProjectsHandler  *projects.Handler
	DocumentsHandler *documents.Handler
	VoicesHandler    *voices.Handler
	SynthesisHandler *synthesis.Handler
	PipelineHandler  *pipeline.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		TTS:    provider,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		ProjectHandler:   app.ProjectsHandler,
		DocumentHandler:  app.DocumentsHandler,
		VoiceHandler:     app.VoicesHandler,
		SynthesisHandler: app.SynthesisHandler,
		PipelineHandler:  app.PipelineHandler,
		UserHandler:      app.UsersHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildProvider(cfg config.Config) (tts.Provider, error) {
	if cfg.TTSProvider != "elevenlabs" {
		return tts.PlaceholderProvider{}, nil
	}
	if strings.TrimSpace(cfg.ElevenAPIKey) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: ELEVEN_API_KEY empty; synthesis and cloning disabled")
			return tts.PlaceholderProvider{}, nil
		}
		return nil, fmt.Errorf("ELEVEN_API_KEY is required")
	}
	return elevenlabs.NewClient(cfg.ElevenAPIKey, cfg.ElevenModelID)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var projectRepo projects.Repo
	var docRepo documents.Repo
	var voiceRepo voices.Repo
	var eventRepo synthesis.Repo
	var userRepo users.Repo

	if app.DB != nil {
		projectRepo = &projects.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		voiceRepo = &voices.PGRepo{DB: app.DB}
		eventRepo = &synthesis.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		projectRepo = projects.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		voiceRepo = voices.NewMemoryRepo()
		eventRepo = synthesis.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	projectSvc := &projects.Service{Repo: projectRepo}
	docSvc := &documents.Service{
		Repo:     docRepo,
		Projects: projectRepo,
		Store:    app.Store,
	}
	voiceSvc := &voices.Service{
		Repo:     voiceRepo,
		Store:    app.Store,
		Provider: app.TTS,
	}

	publicVoices := make(map[string]struct{}, len(app.Config.PublicVoiceIDs))
	for _, id := range app.Config.PublicVoiceIDs {
		publicVoices[id] = struct{}{}
	}
	synthSvc := &synthesis.Service{
		Repo:           eventRepo,
		Store:          app.Store,
		Voices:         voiceSvc,
		Provider:       app.TTS,
		PublicVoiceIDs: publicVoices,
		DefaultSettings: tts.Settings{
			Stability:       app.Config.VoiceStability,
			SimilarityBoost: app.Config.VoiceSimilarity,
			Style:           app.Config.VoiceStyle,
			SpeakerBoost:    app.Config.VoiceSpeakerBoost,
		},
	}

	coord := &pipeline.Coordinator{Voices: voiceSvc, Synthesis: synthSvc}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.ProjectsRepo = projectRepo
	app.DocumentsRepo = docRepo
	app.VoicesRepo = voiceRepo
	app.SynthesisRepo = eventRepo
	app.UsersRepo = userRepo
	app.ProjectsService = projectSvc
	app.DocumentsService = docSvc
	app.VoicesService = voiceSvc
	app.SynthesisService = synthSvc
	app.UsersService = userSvc
	app.Coordinator = coord
	app.ProjectsHandler = projects.NewHandler(projectSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.VoicesHandler = voices.NewHandler(voiceSvc)
	app.SynthesisHandler = synthesis.NewHandler(synthSvc)
	app.PipelineHandler = pipeline.NewHandler(coord)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
}
