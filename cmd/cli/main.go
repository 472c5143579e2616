package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theMessiMagic/if-fashion/internal/config"
	"github.com/theMessiMagic/if-fashion/internal/models"
	"github.com/theMessiMagic/if-fashion/internal/security"
	"github.com/theMessiMagic/if-fashion/internal/store"
)

const usage = "expected 'create-admin', 'tickets', 'reply' or 'backup' subcommand"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Width(10)
	answeredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func main() {
	createCmd := flag.NewFlagSet("create-admin", flag.ExitOnError)
	username := createCmd.String("username", "", "Username for the admin")
	password := createCmd.String("password", "", "Password for the admin")

	ticketsCmd := flag.NewFlagSet("tickets", flag.ExitOnError)
	showAll := ticketsCmd.Bool("all", false, "Include answered tickets")

	replyCmd := flag.NewFlagSet("reply", flag.ExitOnError)
	ticketID := replyCmd.String("id", "", "Ticket ID")
	replyText := replyCmd.String("text", "", "Reply shown to the visitor")

	backupCmd := flag.NewFlagSet("backup", flag.ExitOnError)
	output := backupCmd.String("o", "", "Output file (default if-fashion-<date>.tar.xz)")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "create-admin":
		createCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			createCmd.PrintDefaults()
			os.Exit(1)
		}
		createAdmin(ctx, cfg, *username, *password)
	case "tickets":
		ticketsCmd.Parse(os.Args[2:])
		listTickets(ctx, cfg, *showAll)
	case "reply":
		replyCmd.Parse(os.Args[2:])
		if *ticketID == "" || strings.TrimSpace(*replyText) == "" {
			fmt.Println("id and text are required")
			replyCmd.PrintDefaults()
			os.Exit(1)
		}
		answerTicket(ctx, cfg, *ticketID, *replyText)
	case "backup":
		backupCmd.Parse(os.Args[2:])
		backup(cfg, *output)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) *store.Store {
	db, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreLocation())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	// Ensure collections exist if running cli before server
	if err := db.Init(ctx); err != nil {
		log.Fatalf("Failed to init store: %v", err)
	}
	return db
}

func createAdmin(ctx context.Context, cfg *config.Config, username, password string) {
	db := openStore(ctx, cfg)
	defer db.Close()

	hashed, err := security.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.CreateAdmin(ctx, username, hashed); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("Admin '%s' created successfully.\n", username)
}

func listTickets(ctx context.Context, cfg *config.Config, all bool) {
	db := openStore(ctx, cfg)
	defer db.Close()

	pending, err := db.ListPendingTickets(ctx)
	if err != nil {
		log.Fatalf("Failed to list tickets: %v", err)
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Pending tickets (%d)", len(pending))))
	for _, t := range pending {
		fmt.Println(renderTicket(t))
	}

	if !all {
		return
	}
	answered, err := db.ListAnsweredTickets(ctx)
	if err != nil {
		log.Fatalf("Failed to list tickets: %v", err)
	}
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Answered tickets (%d)", len(answered))))
	for _, t := range answered {
		fmt.Println(renderTicket(t))
	}
}

func renderTicket(t models.ChatTicket) string {
	line := idStyle.Render(t.ID) + " " + t.Question
	if !t.CreatedAt.IsZero() {
		line += " " + mutedStyle.Render(t.CreatedAt.Local().Format(models.TimeLayout))
	}
	if t.Reply != nil {
		line += "\n" + strings.Repeat(" ", 11) + answeredStyle.Render("↳ "+*t.Reply)
	}
	return line
}

func answerTicket(ctx context.Context, cfg *config.Config, id, reply string) {
	db := openStore(ctx, cfg)
	defer db.Close()

	if _, err := db.AnswerTicket(ctx, id, strings.TrimSpace(reply)); err != nil {
		log.Fatalf("Failed to answer ticket %s: %v", id, err)
	}
	fmt.Printf("Ticket %s answered.\n", id)
}

func backup(cfg *config.Config, output string) {
	if output == "" {
		output = "if-fashion-" + time.Now().Format("20060102-150405") + ".tar.xz"
	}
	f, err := os.Create(output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", output, err)
	}

	n, err := writeBackup(f, cfg.DataDir)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		log.Fatalf("Backup failed: %v", err)
	}
	fmt.Printf("Backed up %d files from %s to %s\n", n, cfg.DataDir, output)
}
