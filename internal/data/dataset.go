package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/unravel-games/code2027-server-go/internal/game/state"
	"go.uber.org/zap"
)

// File names of the cleaned data set, per the upstream data pipeline.
const (
	movementFile    = "MOVEMENT.csv"
	diceOutcomeFile = "DICE_OUTCOMES.csv"
	spaceEffectFile = "SPACE_EFFECTS.csv"
	diceEffectFile  = "DICE_EFFECTS.csv"
	gameConfigFile  = "GAME_CONFIG.csv"
	cardFile        = "CARDS_EXPANDED.csv"
)

// Dataset is a Provider backed by the game's CSV tables. All tables are
// loaded once; lookups afterward are map reads.
type Dataset struct {
	fixture *Fixture
	logger  *zap.Logger
}

// LoadDataset reads every table from dir and indexes it for lookup.
func LoadDataset(dir string, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ds := &Dataset{fixture: NewFixture(), logger: logger}

	if err := forEachRow(filepath.Join(dir, movementFile), func(row map[string]string) error {
		var m MovementRecord
		if err := decodeRow(row, &m); err != nil {
			return err
		}
		ds.fixture.AddMovement(m)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := forEachRow(filepath.Join(dir, diceOutcomeFile), func(row map[string]string) error {
		var d DiceOutcome
		if err := decodeRow(row, &d); err != nil {
			return err
		}
		ds.fixture.AddDiceOutcome(d)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := forEachRow(filepath.Join(dir, spaceEffectFile), func(row map[string]string) error {
		var e SpaceEffectRow
		if err := decodeRow(row, &e); err != nil {
			return err
		}
		ds.fixture.AddSpaceEffect(e)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := forEachRow(filepath.Join(dir, diceEffectFile), func(row map[string]string) error {
		var e DiceEffectRow
		if err := decodeRow(row, &e); err != nil {
			return err
		}
		ds.fixture.AddDiceEffect(e)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := forEachRow(filepath.Join(dir, gameConfigFile), func(row map[string]string) error {
		var c SpaceConfig
		if err := decodeRow(row, &c); err != nil {
			return err
		}
		ds.fixture.AddSpaceConfig(c)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := forEachRow(filepath.Join(dir, cardFile), func(row map[string]string) error {
		var c Card
		if err := decodeRow(row, &c); err != nil {
			return err
		}
		ds.fixture.AddCard(c)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Info("data set loaded",
		zap.String("dir", dir),
		zap.Int("movement_rows", len(ds.fixture.movements)),
		zap.Int("space_configs", len(ds.fixture.spaceConfigs)),
		zap.Int("cards", len(ds.fixture.cards)),
	)
	return ds, nil
}

func (ds *Dataset) GetMovement(space string, visit state.VisitType) (*MovementRecord, bool) {
	return ds.fixture.GetMovement(space, visit)
}

func (ds *Dataset) GetDiceOutcome(space string, visit state.VisitType) (*DiceOutcome, bool) {
	return ds.fixture.GetDiceOutcome(space, visit)
}

func (ds *Dataset) GetSpaceEffects(space string, visit state.VisitType) []SpaceEffectRow {
	return ds.fixture.GetSpaceEffects(space, visit)
}

func (ds *Dataset) GetDiceEffects(space string, visit state.VisitType) []DiceEffectRow {
	return ds.fixture.GetDiceEffects(space, visit)
}

func (ds *Dataset) GetGameConfigBySpace(space string) (*SpaceConfig, bool) {
	return ds.fixture.GetGameConfigBySpace(space)
}

func (ds *Dataset) GetCardByID(id string) (*Card, bool) {
	return ds.fixture.GetCardByID(id)
}

func (ds *Dataset) GetCardsByType(t state.CardType) []*Card {
	return ds.fixture.GetCardsByType(t)
}

// forEachRow streams a CSV file as header-keyed row maps.
func forEachRow(path string, fn func(row map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil
	}
	header := records[0]
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.TrimSpace(col)] = strings.TrimSpace(rec[i])
			}
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// decodeRow maps a raw CSV row onto a typed record. Numeric and boolean
// columns tolerate empty and non-numeric cells, which the source tables
// contain.
func decodeRow(row map[string]string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: csvCellHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(row)
}

func csvCellHook(from reflect.Type, to reflect.Type, v any) (any, error) {
	if from.Kind() != reflect.String {
		return v, nil
	}
	s := strings.TrimSpace(v.(string))
	switch to.Kind() {
	case reflect.Int:
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, nil
		}
		return n, nil
	case reflect.Float64:
		if s == "" {
			return 0.0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0.0, nil
		}
		return f, nil
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "yes", "true", "1":
			return true, nil
		default:
			return false, nil
		}
	}
	return v, nil
}
