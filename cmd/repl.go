package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/config"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/brettbedarf/questsh/shell"
	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func prompt(sess *shell.Session, cfg *config.Config) string {
	return userStyle.Render(cfg.User+"@"+cfg.Hostname) + ":" + pathStyle.Render(sess.PromptPath()) + "$ "
}

func printResult(res questsh.Result) {
	if res.Output != "" {
		fmt.Print(res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			fmt.Println()
		}
	}
	if res.Err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(res.Message()))
	}
}

// readLines feeds lines from r into a channel that is closed on EOF. The
// reader stops handing off lines once done is closed.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// repl runs lines until exit, end of input or a termination signal.
func repl(sess *shell.Session, cfg *config.Config) {
	logger := util.GetLogger("main.REPL")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(signalChan)

	fmt.Println(hintStyle.Render("Welcome to questsh " + questsh.Version + ". Nothing you do here touches your real files. Type 'help' to begin."))
	done := make(chan struct{})
	defer close(done)
	lines := readLines(os.Stdin, done)
	for {
		fmt.Print(prompt(sess, cfg))
		select {
		case sig := <-signalChan:
			fmt.Println()
			logger.Info().Str("signal", sig.String()).Msg("Received signal, ending session")
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			res := sess.Execute(line)
			switch res.Action {
			case questsh.ActionClear:
				fmt.Print("\033[H\033[2J")
			case questsh.ActionExit:
				printResult(res)
				return
			}
			printResult(res)
		}
	}
}
