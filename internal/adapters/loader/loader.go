// Package loader decodes player datasets from CSV.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/pkg/logger"
)

// Column names recognised in the dataset header.
const (
	ColName      = "name"
	ColAge       = "age"
	ColLeague    = "league"
	ColPositions = "positions"
	ColValue     = "Value"
	ColWage      = "Wage"
	ColContract  = "contract"
	ColPhotoURL  = "photo_url"
	ColTeams     = "teams"
	ColOverall   = "Overall Rating"
	ColPotential = "Potential"
	ColTraits    = "player_traits"
)

var requiredColumns = []string{ColName, ColAge, ColLeague, ColPositions, ColValue, ColWage}

// how often the row loop checks for cancellation
const cancelCheckRows = 512

// Loader turns CSV rows into validated player records.
type Loader struct {
	log         logger.Logger
	skipInvalid bool
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get().Named("loader")
	}
	return l
}

// Load decodes r with a default Loader.
func Load(ctx context.Context, r io.Reader) ([]model.Player, error) {
	return New().Load(ctx, r)
}

// LoadFile decodes the file at path with a default Loader.
func LoadFile(ctx context.Context, path string) ([]model.Player, error) {
	return New().LoadFile(ctx, path)
}

// LoadFile opens path and decodes it.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]model.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	players, err := l.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return players, nil
}

// Load reads a header row followed by one player per row. Every attribute
// column must be present in the header; rows are returned in file order.
func (l *Loader) Load(ctx context.Context, r io.Reader) ([]model.Player, error) {
	start := time.Now()

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedRow)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedRow, err)
	}
	cols, err := newColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		players []model.Player
		skipped int
	)
	for row := 0; ; row++ {
		if row%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && perr.Err == csv.ErrFieldCount && l.skipInvalid {
				skipped++
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		p, err := cols.decode(rec)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			if l.skipInvalid {
				skipped++
				l.log.Warn(ctx, "skipping invalid row", logger.Int("line", line), logger.Error(err))
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		players = append(players, p)
	}

	l.log.Info(ctx, "dataset decoded",
		logger.Int("players", len(players)),
		logger.Int("skipped", skipped),
		logger.Duration("elapsed", time.Since(start)))
	return players, nil
}

// columns maps header names to record offsets.
type columns struct {
	index      map[string]int
	attributes [model.AttributeCount]int
}

func newColumns(header []string) (*columns, error) {
	c := &columns{index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := c.index[h]; !dup {
			c.index[h] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := c.index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrSchema, name)
		}
	}
	for i, name := range model.AttributeSchema {
		at, ok := c.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing attribute column %q", model.ErrSchema, name)
		}
		c.attributes[i] = at
	}
	return c, nil
}

func (c *columns) field(rec []string, name string) string {
	i, ok := c.index[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (c *columns) decode(rec []string) (model.Player, error) {
	var p model.Player

	p.Name = Transliterate(c.field(rec, ColName))
	if p.Name == "" {
		return p, fmt.Errorf("%w: empty name", ErrMalformedRow)
	}

	age, err := strconv.Atoi(c.field(rec, ColAge))
	if err != nil {
		return p, fmt.Errorf("%w: %s: age: %w", ErrMalformedRow, p.Name, err)
	}
	p.Age = age
	p.League = c.field(rec, ColLeague)

	positions, err := model.ParsePositions(c.field(rec, ColPositions))
	if err != nil {
		return p, fmt.Errorf("%w: %s: %w", model.ErrSchema, p.Name, err)
	}
	p.Positions = positions

	if p.Value, err = ParseMoney(c.field(rec, ColValue)); err != nil {
		return p, fmt.Errorf("%w: %s: value: %w", ErrMalformedRow, p.Name, err)
	}
	if p.Wage, err = ParseMoney(c.field(rec, ColWage)); err != nil {
		return p, fmt.Errorf("%w: %s: wage: %w", ErrMalformedRow, p.Name, err)
	}
	p.Contract = ContractEnd(c.field(rec, ColContract))

	p.Attributes = make(model.Vector, model.AttributeCount)
	for i, at := range c.attributes {
		raw := strings.TrimSpace(rec[at])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %s: %q is not a number", model.ErrSchema, p.Name, model.AttributeSchema[i], raw)
		}
		p.Attributes[i] = v
	}

	p.PhotoURL = c.field(rec, ColPhotoURL)
	p.Teams = c.field(rec, ColTeams)
	p.Traits = c.field(rec, ColTraits)
	p.Overall = optionalInt(c.field(rec, ColOverall))
	p.Potential = optionalInt(c.field(rec, ColPotential))
	return p, nil
}

// ContractEnd keeps the last comma-separated segment of raw, so
// "2019 ~ 2023, Loan" style values reduce to their final part.
func ContractEnd(raw string) string {
	if i := strings.LastIndexByte(raw, ','); i >= 0 {
		raw = raw[i+1:]
	}
	return strings.TrimSpace(raw)
}

// ParseMoney accepts plain numbers as well as scraped amounts such as
// "€7.5M" or "50K".
func ParseMoney(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, s[:len(s)-1]
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult, s = 1_000, s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return v * mult, nil
}

func optionalInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
