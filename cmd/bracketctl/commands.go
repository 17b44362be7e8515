package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/Dosada05/tournament-bracket/brackets"
	"gopkg.in/yaml.v3"
)

type rankingsFile struct {
	Competitors map[string]float64 `yaml:"competitors"`
}

type buildOptions struct {
	statePath    string
	rankingsPath string
	leaves       int
	seed         *int64
	historyLimit int
}

type report struct {
	State        brackets.State      `yaml:"state"`
	Winner       string              `yaml:"winner,omitempty"`
	HistoryDepth int                 `yaml:"history_depth"`
	Decisions    []brackets.Decision `yaml:"decisions,omitempty"`
	MatchQueue   [][]string          `yaml:"match_queue"`
	Bracket      *brackets.Mapping   `yaml:"bracket,omitempty"`
}

func buildCommand(w io.Writer, opts buildOptions) error {
	rankings, err := loadRankings(opts.rankingsPath)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if opts.seed != nil {
		seed = *opts.seed
	}

	session := brackets.NewSession(brackets.WithHistoryLimit(opts.historyLimit))
	if _, err := session.Generate(opts.leaves, rankings, rand.New(rand.NewSource(seed))); err != nil {
		return fmt.Errorf("build bracket: %w", err)
	}
	if err := saveSession(opts.statePath, session); err != nil {
		return err
	}
	return writeReport(w, session, nil, false)
}

func matchupsCommand(w io.Writer, statePath string) error {
	session, err := loadSession(statePath, 0)
	if err != nil {
		return err
	}
	return writeReport(w, session, nil, false)
}

func advanceCommand(w io.Writer, statePath string, winners []string, historyLimit int) error {
	session, err := loadSession(statePath, historyLimit)
	if err != nil {
		return err
	}
	outcome, err := session.Decide(brackets.NewWinnerSet(winners...))
	if err != nil {
		return err
	}
	if err := saveSession(statePath, session); err != nil {
		return err
	}
	return writeReport(w, session, outcome.Decisions, false)
}

func revertCommand(w io.Writer, statePath string, historyLimit int) error {
	session, err := loadSession(statePath, historyLimit)
	if err != nil {
		return err
	}
	if err := session.Revert(); err != nil {
		return err
	}
	if err := saveSession(statePath, session); err != nil {
		return err
	}
	return writeReport(w, session, nil, false)
}

// showCommand prints the report with the bracket mapping, or with tree set
// the bracket drawn as text.
func showCommand(w io.Writer, statePath string, tree bool) error {
	session, err := loadSession(statePath, 0)
	if err != nil {
		return err
	}
	if tree {
		return writeTree(w, session.Export().Bracket)
	}
	return writeReport(w, session, nil, true)
}

func loadRankings(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rankings: %w", err)
	}
	defer f.Close()

	var file rankingsFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode rankings %s: %w", path, err)
	}
	if len(file.Competitors) == 0 {
		return nil, fmt.Errorf("rankings %s lists no competitors", path)
	}
	return file.Competitors, nil
}

// loadSession restores the session stored at path. A missing file is an
// empty session.
func loadSession(path string, historyLimit int) (*brackets.Session, error) {
	opts := []brackets.SessionOption{brackets.WithHistoryLimit(historyLimit)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return brackets.NewSession(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state brackets.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: state file %s: %v", brackets.ErrMalformedBracket, path, err)
	}
	return brackets.RestoreSession(state, opts...)
}

// saveSession writes through a temporary file so a failed write never leaves
// a truncated state behind.
func saveSession(path string, session *brackets.Session) error {
	data, err := json.MarshalIndent(session.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bracket-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func writeReport(w io.Writer, session *brackets.Session, decisions []brackets.Decision, withBracket bool) error {
	state := session.Export()
	r := report{
		State:        session.State(),
		HistoryDepth: len(state.History),
		Decisions:    decisions,
		MatchQueue:   make([][]string, 0, len(state.Queue)),
	}
	for _, pair := range state.Queue {
		r.MatchQueue = append(r.MatchQueue, []string{pair[0], pair[1]})
	}
	if winner, ok := session.Winner(); ok {
		r.Winner = winner
	}
	if withBracket {
		r.Bracket = state.Bracket
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}
