package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/media"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/dance-trainer/pkg/config"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/services"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
)

const usage = "expected 'export', 'import', 'add', 'list', 'tags' or 'check-update' subcommands"

var log = logging.LogService("CLI")

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, false)

	if os.Args[1] == "check-update" {
		doCheckUpdate(cfg)
		return
	}

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to db")
	}
	defer repo.Close()

	store, err := media.NewFileStore(cfg.MediaDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open media directory")
	}

	videos := services.NewVideoService(repo, store)
	backups := services.NewBackupService(repo, store)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		cmd := flag.NewFlagSet("export", flag.ExitOnError)
		zipFile := cmd.String("zip", "", "write a ZIP backup with local videos to this file")
		cmd.Parse(os.Args[2:])
		doExport(ctx, backups, *zipFile)
	case "import":
		cmd := flag.NewFlagSet("import", flag.ExitOnError)
		file := cmd.String("file", "", "JSON or ZIP backup to import")
		cmd.Parse(os.Args[2:])
		if *file == "" {
			cmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(ctx, backups, *file)
	case "add":
		cmd := flag.NewFlagSet("add", flag.ExitOnError)
		title := cmd.String("title", "", "video title")
		url := cmd.String("url", "", "YouTube URL or file:// locator")
		notes := cmd.String("notes", "", "notes, #tags become hashtags")
		cmd.Parse(os.Args[2:])
		doAdd(ctx, videos, domain.Video{Title: *title, VideoURL: *url, Notes: *notes})
	case "list":
		cmd := flag.NewFlagSet("list", flag.ExitOnError)
		var c domain.Criteria
		cmd.BoolVar(&c.StarredOnly, "starred", false, "only starred videos")
		cmd.StringVar(&c.Tag, "tag", "", "only videos with this hashtag")
		cmd.StringVar(&c.Query, "q", "", "title substring")
		cmd.Parse(os.Args[2:])
		doList(ctx, videos, c)
	case "tags":
		doTags(ctx, videos)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func doExport(ctx context.Context, backups *services.BackupService, zipFile string) {
	if zipFile == "" {
		data, err := backups.ExportJSON(ctx)
		if err != nil {
			log.WithError(err).Fatal("Export failed")
		}
		os.Stdout.Write(data)
		fmt.Println()
		return
	}

	f, err := os.Create(zipFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to create archive")
	}
	defer f.Close()
	if err := backups.ExportArchive(ctx, f); err != nil {
		log.WithError(err).Fatal("Export failed")
	}
	log.WithField("file", zipFile).Info("Wrote full backup")
}

func doImport(ctx context.Context, backups *services.BackupService, filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.WithError(err).Fatal("Failed to open file")
	}
	defer file.Close()

	n, err := backups.Import(ctx, file, strings.HasSuffix(strings.ToLower(filename), ".zip"))
	if err != nil {
		log.WithError(err).Fatal("Import failed")
	}
	log.Infof("Imported %d videos", n)
}

func doAdd(ctx context.Context, videos *services.VideoService, v domain.Video) {
	existing, err := videos.Attach(ctx, v.VideoURL)
	if err != nil {
		log.WithError(err).Fatal("Add failed")
	}
	v.ID = existing.ID
	saved, err := videos.Save(ctx, v)
	if err != nil {
		log.WithError(err).Fatal("Add failed")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(saved)
}

func doList(ctx context.Context, videos *services.VideoService, c domain.Criteria) {
	list, err := videos.List(ctx, c)
	if err != nil {
		log.WithError(err).Fatal("List failed")
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAR\tTITLE\tHASHTAGS\tURL")
	for _, v := range list {
		star := ""
		if v.IsStarred {
			star = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", v.ID, star, v.Title, v.Hashtags, v.VideoURL)
	}
	tw.Flush()
}

func doTags(ctx context.Context, videos *services.VideoService) {
	tags, err := videos.Tags(ctx)
	if err != nil {
		log.WithError(err).Fatal("Tags failed")
	}
	for _, t := range tags {
		fmt.Printf("%s (%d)\n", t.Name, t.Count)
	}
}

func doCheckUpdate(cfg *config.Config) {
	updates := services.NewUpdateService(&http.Client{Timeout: cfg.UpdateTimeout}, cfg.VersionURL, cfg.DownloadURL, cfg.AppVersionCode)
	info, err := updates.Check(context.Background())
	if err != nil {
		log.WithError(err).Fatal("Failed to check for updates. Check internet connection.")
	}
	if info.Available {
		fmt.Printf("Update available: %d -> %d\nDownload: %s\n", info.Current, info.Latest, info.DownloadURL)
		return
	}
	fmt.Println("You are on the latest version!")
}
