package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novadoc/docclient"
	"github.com/tuannm99/novadoc/internal/sql/executor"
)

const (
	prompt     = "novadoc> "
	contPrompt = "...> "
)

func printResult(w io.Writer, res *executor.Result) {
	if res == nil || len(res.Groups) == 0 {
		fmt.Fprintf(w, "OK (%d affected)\n", affected(res))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for i, g := range res.Groups {
		if len(res.Groups) > 1 {
			fmt.Fprintf(tw, "-- %d --\n", i+1)
		}
		for _, f := range g {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Value.Kind(), f.Value)
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "(%d affected)\n", res.AffectedRows)
}

func affected(res *executor.Result) int64 {
	if res == nil {
		return 0
	}
	return res.AffectedRows
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novadoc_history"
	}
	return filepath.Join(home, ".novadoc_history")
}

const helpText = `meta commands:
  \q | quit | exit       quit
  \history               print history
  \save                  flush the document on the server
  \session               print the session id
  \help                  show help

statements:
  SETUP TABLE '<name>';
  IN TABLE '<name>' SCHEMA IS ('<col>' <type> [NN] [AI], ...);
  IN TABLE '<name>' SET KEY '<col>' VALUE TO <literal>;
  IN TABLE '<name>' SET KEY '<col>' VALUE TO <literal> WHEREVER '<col>' <op> <literal>;
  end every statement with ';' (multiline input waits for it)`

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:8866", "server address")
		timeout  = flag.Duration("timeout", 3*time.Second, "dial timeout")
		token    = flag.String("token", os.Getenv("NOVADOC_TOKEN"), "JWT for servers with auth enabled")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShot  = flag.String("c", "", "execute one statement and exit (must end with ';')")
	)
	flag.Parse()

	cli, err := docclient.Dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()

	ctx := context.Background()
	if *token != "" {
		if err := cli.Auth(ctx, *token); err != nil {
			fmt.Fprintf(os.Stderr, "auth: %v\n", err)
			os.Exit(1)
		}
	}

	if strings.TrimSpace(*oneShot) != "" {
		res, err := cli.Exec(*oneShot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printResult(os.Stdout, res)
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.Entries() {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("connected to %s\n", *addr)
	fmt.Println(`type \help for help`)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C clears the current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
			}
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && (strings.HasPrefix(line, `\`) || line == "quit" || line == "exit") {
			switch line {
			case `\q`, "quit", "exit":
				return
			case `\help`:
				fmt.Println(helpText)
			case `\history`:
				h.Print(os.Stdout, 50)
			case `\save`:
				if err := cli.Save(ctx); err != nil {
					fmt.Printf("error: %v\n", err)
				} else {
					fmt.Println("saved")
				}
			case `\session`:
				fmt.Println(cli.Session())
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactStatement(stmt))

		res, err := cli.Exec(stmt)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(os.Stdout, res)
	}
}
