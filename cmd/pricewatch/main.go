package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	cli "github.com/jawher/mow.cli"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pricewatch/internal/cache"
	"pricewatch/internal/client"
	"pricewatch/internal/configuration"
	"pricewatch/internal/database"
	"pricewatch/internal/logger"
	"pricewatch/internal/model"
	"pricewatch/internal/notification"
	"pricewatch/internal/parse"
	"pricewatch/internal/server"
	"pricewatch/internal/tracker"
)

func main() {
	app := cli.App("pricewatch", "Track e-commerce product prices and alert on drops.")
	app.Spec = "[-c]"
	configPath := app.StringOpt("c config", "config.toml", "path to the TOML configuration file")

	app.Command("add", "start tracking a product URL", cmdAdd(configPath))
	app.Command("list", "list tracked products", cmdList(configPath))
	app.Command("update", "change the target price of a tracked product", cmdUpdate(configPath))
	app.Command("remove", "stop tracking a product", cmdRemove(configPath))
	app.Command("check", "check one product now, or every due product", cmdCheck(configPath))
	app.Command("history", "show the price history of a product", cmdHistory(configPath))
	app.Command("monitor", "run the polling scheduler", cmdMonitor(configPath))
	app.Command("serve", "run the REST API server with the scheduler", cmdServe(configPath))
	app.Command("init-db", "connect to the database and ensure its indexes exist", cmdInitDB(configPath))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// appEnv holds everything a command needs: config, logger, DB connection
// and the assembled tracker. Close after use.
type appEnv struct {
	config  *configuration.Config
	logger  *logger.Logger
	dbConn  *mongo.Client
	db      database.Database
	cache   *cache.Cache
	tracker tracker.Tracker
	logFile *os.File
}

func setup(configPath string) (*appEnv, error) {
	config, err := configuration.GetConfig(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}
	logOutput := io.Writer(os.Stdout)
	var logFile *os.File
	if config.LogToFile {
		logFile, err = os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger := logger.NewLogger(level, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(context.Background(), config.DatabaseURI)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}
	db := database.Database{Database: dbConn.Database(database.Name)}

	var priceCache *cache.Cache
	if config.Cache.Enabled {
		priceCache, err = cache.New(config.Cache.Addr, config.Cache.Password, config.Cache.DB, 2*config.CheckInterval)
		if err != nil {
			appLogger.Warn("Cache unavailable, continuing without it, err:", err)
			priceCache = nil
		}
	}

	notifier := notification.Notifier{Logger: appLogger}
	if config.Email.Enabled {
		notifier.Email = &notification.EmailSender{
			Host:      config.Email.SMTPHost,
			Port:      config.Email.SMTPPort,
			Sender:    config.Email.Sender,
			Password:  config.Email.Password,
			Recipient: config.Email.Recipient,
		}
	}
	if config.Desktop.Enabled {
		notifier.Desktop = &notification.DesktopSender{}
	}

	trk := tracker.Tracker{
		DB: db,
		Client: client.Client{
			Client:         &http.Client{Timeout: config.RequestTimeout},
			UserAgents:     config.UserAgents,
			MaxRetries:     config.MaxRetries,
			RetryBackoff:   config.RetryBackoff,
			CaptchaBackoff: config.CaptchaBackoff,
			JitterMax:      config.JitterMax,
			MaxPrice:       config.MaxPrice,
			Logger:         appLogger,
		},
		Notifier:      notifier,
		Cache:         priceCache,
		Logger:        appLogger,
		CheckInterval: config.CheckInterval,
		Cooldown:      config.Cooldown,
		JitterMax:     config.JitterMax,
		RequestDelay:  config.RequestDelay,
	}

	return &appEnv{
		config:  config,
		logger:  appLogger,
		dbConn:  dbConn,
		db:      db,
		cache:   priceCache,
		tracker: trk,
		logFile: logFile,
	}, nil
}

func (e *appEnv) close() {
	if err := e.dbConn.Disconnect(context.Background()); err != nil {
		e.logger.Error("Error disconnecting from DB:", err)
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("Error closing cache:", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func fail(format string, v ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	cli.Exit(1)
}

func cmdAdd(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "URL -t [-n]"
		url := cmd.StringArg("URL", "", "product page URL")
		target := cmd.Float64Opt("t target", 0, "target price to alert at or below")
		name := cmd.StringOpt("n name", "", "product name, scraped from the page when omitted")

		cmd.Action = func() {
			if *target <= 0 {
				fail("target price must be greater than zero")
			}
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()
			ctx := context.Background()

			cleanURL, err := parse.NormalizeURL(*url)
			if err != nil {
				fail("invalid URL: %v", err)
			}
			p := model.Product{
				URL:         cleanURL,
				Name:        *name,
				Site:        parse.SiteName(cleanURL),
				TargetPrice: *target,
			}

			info, err := e.tracker.Client.ScrapeProduct(ctx, cleanURL)
			if err != nil {
				e.logger.Warnf("No price on initial check for URL: %s, err: %v", cleanURL, err)
			} else if p.Name == "" {
				p.Name = info.Title
			}
			if p.Name == "" {
				p.Name = "Unknown Product"
			}

			productID, err := e.db.ProductInsert(ctx, p)
			if err != nil {
				fail("error adding product: %v", err)
			}
			if info.Price > 0 {
				p, err = e.db.ProductFindOne(ctx, productID)
				if err != nil {
					fail("error reading back product: %v", err)
				}
				if err = e.db.ProductPriceUpdate(ctx, p, info.Price); err != nil {
					e.logger.Errorf("Error storing initial price for ProductID: %s, err: %v", productID, err)
				} else {
					price := info.Price
					ph := model.PriceHistory{
						ProductID:    p.ID,
						Price:        &price,
						Status:       model.HistoryStatusSuccess,
						Availability: info.Availability,
						Seller:       info.Seller,
						Timestamp:    primitive.NewDateTimeFromTime(time.Now()),
					}
					if err = e.db.PriceHistoryInsert(ctx, ph); err != nil {
						e.logger.Errorf("Error storing initial history for ProductID: %s, err: %v", productID, err)
					}
				}
				fmt.Printf("Tracking %q at %s, current price %.2f, target %.2f, ID: %s\n",
					p.Name, p.Site, info.Price, *target, productID)
				return
			}
			fmt.Printf("Tracking %q at %s, no price yet, target %.2f, ID: %s\n",
				p.Name, p.Site, *target, productID)
		}
	}
}

func cmdList(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()

			ps, err := e.db.ProductsFindActive(context.Background())
			if err != nil {
				fail("error listing products: %v", err)
			}
			if len(ps) == 0 {
				fmt.Println("No tracked products.")
				return
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSITE\tCURRENT\tTARGET\tLOWEST\tLAST CHECKED")
			for _, p := range ps {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
					p.ID.Hex(), p.Name, p.Site,
					fmtPrice(p.CurrentPrice), p.TargetPrice, fmtPrice(p.LowestPrice),
					fmtTime(p.LastChecked))
			}
			w.Flush()
		}
	}
}

func cmdUpdate(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "ID TARGET"
		id := cmd.StringArg("ID", "", "product ID")
		target := cmd.Float64Arg("TARGET", 0, "new target price")

		cmd.Action = func() {
			if *target <= 0 {
				fail("target price must be greater than zero")
			}
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()

			if err := e.db.ProductTargetUpdate(context.Background(), *id, *target); err != nil {
				fail("error updating target price: %v", err)
			}
			fmt.Printf("Target price for %s set to %.2f\n", *id, *target)
		}
	}
}

func cmdRemove(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "ID"
		id := cmd.StringArg("ID", "", "product ID")

		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()

			if err := e.db.ProductDeactivate(context.Background(), *id); err != nil {
				fail("error removing product: %v", err)
			}
			fmt.Println("Stopped tracking", *id)
		}
	}
}

func cmdCheck(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[ID]"
		id := cmd.StringArg("ID", "", "product ID, every due product when omitted")

		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()
			ctx := context.Background()

			if *id == "" {
				stats, err := e.tracker.CheckAll(ctx)
				if err != nil {
					fail("error running check pass: %v", err)
				}
				fmt.Printf("Checked %d product(s): %d updated, %d alert(s), %d error(s)\n",
					stats.Checked, stats.Updated, stats.Alerts, stats.Errors)
				return
			}

			p, err := e.db.ProductFindOne(ctx, *id)
			if err != nil {
				fail("error finding product: %v", err)
			}
			res, err := e.tracker.CheckProduct(ctx, p)
			if err != nil {
				fail("error checking product: %v", err)
			}
			fmt.Printf("%s: %.2f (target %.2f)\n", p.Name, res.Price, p.TargetPrice)
			if res.Alerted {
				fmt.Println("Price drop alert sent.")
			}
		}
	}
}

func cmdHistory(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "ID [-d] [-l]"
		id := cmd.StringArg("ID", "", "product ID")
		days := cmd.IntOpt("d days", 0, "only show records from the last N days")
		limit := cmd.IntOpt("l limit", 0, "maximum number of records")

		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()
			ctx := context.Background()

			objID, err := primitive.ObjectIDFromHex(*id)
			if err != nil {
				fail("invalid product ID: %v", err)
			}
			var since time.Time
			if *days > 0 {
				since = time.Now().AddDate(0, 0, -*days)
			}
			phs, err := e.db.PriceHistoryFind(ctx, objID, since, int64(*limit))
			if err != nil {
				fail("error getting history: %v", err)
			}
			if len(phs) == 0 {
				fmt.Println("No history records.")
				return
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tSTATUS\tPRICE\tDETAIL")
			for _, ph := range phs {
				detail := ph.Availability
				if ph.Status == model.HistoryStatusError {
					detail = ph.ErrorMessage
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					ph.Timestamp.Time().Format(time.RFC3339), ph.Status, fmtPrice(ph.Price), detail)
			}
			w.Flush()
		}
	}
}

func cmdMonitor(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[--once] [-i]"
		once := cmd.BoolOpt("once", false, "run one check pass and exit")
		interval := cmd.StringOpt("i interval", "", "override the configured check interval, e.g. 1h")

		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()

			if *interval != "" {
				d, err := time.ParseDuration(*interval)
				if err != nil || d < 15*time.Second {
					fail("invalid interval: %s", *interval)
				}
				e.config.CheckInterval = d
				e.tracker.CheckInterval = d
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if *once {
				stats, err := e.tracker.CheckAll(ctx)
				if err != nil {
					fail("error running check pass: %v", err)
				}
				fmt.Printf("Checked %d product(s): %d updated, %d alert(s), %d error(s)\n",
					stats.Checked, stats.Updated, stats.Alerts, stats.Errors)
				return
			}

			e.logger.Info("Starting monitor with interval:", e.config.CheckInterval)
			ticker := time.NewTicker(e.config.CheckInterval)
			defer ticker.Stop()
			e.tracker.MonitorInInterval(ctx, ticker, nil)
		}
	}
}

func cmdServe(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Action = func() {
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runs := &server.RunLog{}
			e.logger.Info("Starting monitor with interval:", e.config.CheckInterval)
			ticker := time.NewTicker(e.config.CheckInterval)
			defer ticker.Stop()
			go e.tracker.MonitorInInterval(ctx, ticker, runs.Record)

			srv := server.Server{
				DB:        e.db,
				Tracker:   e.tracker,
				Cache:     e.cache,
				Runs:      runs,
				StartTime: time.Now(),
				Logger:    e.logger,
			}
			httpSrv := &http.Server{
				Handler:      srv.Router(),
				Addr:         e.config.ServerAddress,
				WriteTimeout: 15 * time.Second,
				ReadTimeout:  15 * time.Second,
				IdleTimeout:  15 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					e.logger.Error("Error shutting down HTTP server:", err)
				}
			}()

			e.logger.Info("Serving on", httpSrv.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fail("%v", err)
			}
		}
	}
}

func cmdInitDB(configPath *string) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Action = func() {
			// ConnectDB creates the collections' indexes.
			e, err := setup(*configPath)
			if err != nil {
				fail("%v", err)
			}
			defer e.close()
			fmt.Println("Database initialized, indexes ensured.")
		}
	}
}

func fmtPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

func fmtTime(t *primitive.DateTime) string {
	if t == nil {
		return "never"
	}
	return t.Time().Format("2006-01-02 15:04")
}
