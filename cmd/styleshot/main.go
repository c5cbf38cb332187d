package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"styleshot/internal/catalog"
	"styleshot/internal/domain"
	"styleshot/internal/entitlement"
	"styleshot/internal/generation"
	"styleshot/internal/infra"
	"styleshot/internal/kvstore"
	"styleshot/internal/media"
	"styleshot/internal/prefs"
	"styleshot/internal/quota"
	"styleshot/internal/studio"
	"styleshot/pkg/zip"
)

const deviceIDKey = "cli:device_id"

func main() {
	var (
		promptFlag     string
		imageFlag      string
		styleFlag      int
		slotsFlag      int
		outFlag        string
		zipFlag        string
		shareFlag      bool
		listStylesFlag bool
	)

	flag.StringVar(&promptFlag, "prompt", "", "text prompt to generate from")
	flag.StringVar(&imageFlag, "image", "", "path of a photo to restyle")
	flag.IntVar(&styleFlag, "style", 1, "style id (see -list-styles)")
	flag.IntVar(&slotsFlag, "slots", 0, "number of variants to generate (default: configured batch size)")
	flag.StringVar(&outFlag, "out", "", "directory to save generated images into (default: MEDIA_LIBRARY_PATH)")
	flag.StringVar(&zipFlag, "zip", "", "also bundle succeeded images into this zip file")
	flag.BoolVar(&shareFlag, "share", false, "stage the first succeeded image for sharing")
	flag.BoolVar(&listStylesFlag, "list-styles", false, "print the style catalog and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "styleshot").Logger()

	cat, err := catalog.Load(cfg.StylesPath)
	if err != nil {
		exitWithError(err)
	}
	if listStylesFlag {
		printStyles(cat, catalog.NewGate(cfg.FreeStyles))
		return
	}

	if strings.TrimSpace(promptFlag) == "" && strings.TrimSpace(imageFlag) == "" {
		exitWithError(errors.New("either -prompt or -image must be provided"))
	}

	store, err := kvstore.NewFileStore(cfg.KVFilePath)
	if err != nil {
		exitWithError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	subject, err := installationID(ctx, store)
	if err != nil {
		exitWithError(err)
	}

	p := prefs.New(store)
	onboarded, err := p.Onboarded(ctx, subject)
	if err != nil {
		exitWithError(err)
	}
	if !onboarded {
		fmt.Println("Welcome to StyleShot. Each run produces a batch of styled variants;")
		fmt.Printf("the free tier includes %d generations.\n\n", cfg.FreeGenerationLimit)
		if err := p.CompleteOnboarding(ctx, subject); err != nil {
			exitWithError(err)
		}
	}

	genClient, err := generation.NewClient(generation.Options{
		BaseURL:        cfg.GenerationBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		exitWithError(err)
	}

	var entService entitlement.Service
	if cfg.EntitlementBaseURL != "" {
		entService, err = entitlement.NewClient(entitlement.Options{
			BaseURL: cfg.EntitlementBaseURL,
			APIKey:  cfg.EntitlementAPIKey,
			Logger:  &logger,
		})
		if err != nil {
			exitWithError(err)
		}
	} else {
		entService = &entitlement.Static{}
	}

	svc, err := studio.NewService(
		cat,
		catalog.NewGate(cfg.FreeStyles),
		quota.NewGate(store, cfg.FreeGenerationLimit, logger),
		entService,
		generation.NewOrchestrator(genClient, cfg.BatchSlots, &logger),
		&logger,
	)
	if err != nil {
		exitWithError(err)
	}

	total := cfg.BatchSlots
	if slotsFlag > 0 && slotsFlag < total {
		total = slotsFlag
	}
	out, err := svc.Generate(ctx, studio.GenerateParams{
		Subject:   subject,
		Prompt:    promptFlag,
		ImagePath: strings.TrimSpace(imageFlag),
		StyleID:   styleFlag,
		Slots:     slotsFlag,
		OnUpdate: func(u generation.Update) {
			res := u.Results[u.Slot]
			switch res.Status {
			case domain.SlotInFlight:
				fmt.Printf("slot %d/%d: generating...\n", u.Slot+1, total)
			case domain.SlotSucceeded:
				fmt.Printf("slot %d/%d: done (%d/%d ready)\n", u.Slot+1, total, u.Ready, total)
			case domain.SlotFailed:
				fmt.Printf("slot %d/%d: failed: %s\n", u.Slot+1, total, res.ErrorMessage)
			}
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("canceled")
		}
		exitWithError(err)
	}
	if out.LastFree {
		fmt.Println("note: that was your last free generation")
	}

	outDir := strings.TrimSpace(outFlag)
	if outDir == "" {
		outDir = cfg.MediaLibraryPath
	}
	lib, err := media.NewLibrary(media.Options{Root: outDir, Logger: &logger})
	if err != nil {
		exitWithError(err)
	}
	saved := 0
	var assets []zip.Asset
	for _, res := range out.Results {
		if res.Status != domain.SlotSucceeded {
			continue
		}
		path, err := lib.SaveImage(ctx, res.ImageDataURI, out.Style.InternalName, res.Slot)
		if err != nil {
			logger.Warn().Err(err).Int("slot", res.Slot).Msg("failed to save image")
			continue
		}
		saved++
		fmt.Printf("saved %s\n", path)
		if zipFlag != "" {
			if data, err := decodeDataURI(res.ImageDataURI); err == nil {
				assets = append(assets, zip.Asset{
					Filename: fmt.Sprintf("slot-%d.jpg", res.Slot+1),
					MIME:     "image/jpeg",
					Data:     data,
				})
			}
		}
	}
	if zipFlag != "" && len(assets) > 0 {
		archive := zip.ArchiveAssets(assets)
		if archive == nil {
			exitWithError(errors.New("failed to build archive"))
		}
		if err := os.WriteFile(zipFlag, archive, 0o644); err != nil {
			exitWithError(err)
		}
		fmt.Printf("archived %d images to %s\n", len(assets), zipFlag)
	}

	if shareFlag {
		for _, res := range out.Results {
			if res.Status != domain.SlotSucceeded {
				continue
			}
			staged, err := lib.ShareImage(ctx, res.ImageDataURI)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to stage image for sharing")
				break
			}
			fmt.Printf("staged for sharing: %s\n", staged)
			break
		}
	}

	fmt.Printf("%d/%d variants ready, %d saved\n", out.Ready, total, saved)
	if !out.Entitled {
		fmt.Printf("free generations used: %d/%d\n", out.Quota.Used, out.Quota.Limit)
	}
}

// installationID returns the persisted CLI installation id, minting one on
// first use.
func installationID(ctx context.Context, store kvstore.Store) (string, error) {
	id, err := store.Get(ctx, deviceIDKey)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := store.Set(ctx, deviceIDKey, id); err != nil {
		return "", err
	}
	return id, nil
}

func printStyles(cat *catalog.Catalog, gate *catalog.Gate) {
	fmt.Printf("%-4s %-12s %-14s %-12s %s\n", "ID", "NAME", "DISPLAY", "CATEGORY", "TIER")
	for _, style := range cat.Styles() {
		tier := "premium"
		if gate.Free(style) {
			tier = "free"
		}
		fmt.Printf("%-4d %-12s %-14s %-12s %s\n", style.ID, style.InternalName, style.DisplayName, style.Category, tier)
	}
}

func decodeDataURI(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
