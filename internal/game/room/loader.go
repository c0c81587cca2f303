package room

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlRoomFile is the top-level YAML structure for room definition files.
type yamlRoomFile struct {
	Room yamlRoom `yaml:"room"`
}

// yamlRoom is the YAML representation of a room definition.
type yamlRoom struct {
	ID                     string            `yaml:"id"`
	Title                  string            `yaml:"title"`
	Brief                  string            `yaml:"brief"`
	Victory                string            `yaml:"victory"`
	TerminalFlag           string            `yaml:"terminal_flag"`
	Script                 string            `yaml:"script"`
	ScriptInstructionLimit int               `yaml:"script_instruction_limit"`
	Flags                  []yamlFlag        `yaml:"flags"`
	Fixtures               []yamlFixture     `yaml:"fixtures"`
	Items                  []yamlItem        `yaml:"items"`
	Interactions           []yamlInteraction `yaml:"interactions"`
	Hints                  []yamlHint        `yaml:"hints"`
	HintFallback           string            `yaml:"hint_fallback"`
	Scenes                 []yamlSceneSlot   `yaml:"scenes"`
}

type yamlFlag struct {
	Name    string `yaml:"name"`
	Initial bool   `yaml:"initial"`
}

type yamlFixture struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	States        []string          `yaml:"states"`
	Initial       string            `yaml:"initial"`
	Hidden        bool              `yaml:"hidden"`
	Openable      bool              `yaml:"openable"`
	Searchable    bool              `yaml:"searchable"`
	SearchedState string            `yaml:"searched_state"`
	Lock          *yamlLock         `yaml:"lock"`
	Contains      []string          `yaml:"contains"`
	Conceals      []string          `yaml:"conceals"`
	Reveals       []string          `yaml:"reveals"`
	Descriptions  map[string]string `yaml:"descriptions"`
	Overrides     []yamlOverride    `yaml:"overrides"`
	Messages      map[string]string `yaml:"messages"`
	OpenMessage   string            `yaml:"open_message"`
	SearchMessage string            `yaml:"search_message"`
	UnlockMessage string            `yaml:"unlock_message"`
}

type yamlLock struct {
	Key           string `yaml:"key"`
	LockedState   string `yaml:"locked_state"`
	UnlockedState string `yaml:"unlocked_state"`
}

type yamlOverride struct {
	State string        `yaml:"state"`
	When  yamlCondition `yaml:"when"`
	Text  string        `yaml:"text"`
}

type yamlItem struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Location    string            `yaml:"location"`
	Hidden      bool              `yaml:"hidden"`
	Portable    *bool             `yaml:"portable"`
	Messages    map[string]string `yaml:"messages"`
	TakeMessage string            `yaml:"take_message"`
}

type yamlCondition struct {
	Flags        map[string]bool   `yaml:"flags"`
	Fixtures     map[string]string `yaml:"fixtures"`
	HasItems     []string          `yaml:"has_items"`
	MissingItems []string          `yaml:"missing_items"`
}

type yamlInteraction struct {
	Item       string        `yaml:"item"`
	Target     string        `yaml:"target"`
	When       yamlCondition `yaml:"when"`
	WhenScript string        `yaml:"when_script"`
	Effects    []yamlEffect  `yaml:"effects"`
	Success    string        `yaml:"success"`
	Fail       *yamlFail     `yaml:"fail"`
}

type yamlFail struct {
	Reason  string `yaml:"reason"`
	Message string `yaml:"message"`
}

// yamlEffect carries exactly one of its members; the loader rejects effects
// that set none or several.
type yamlEffect struct {
	SetFixture    *yamlSetFixture `yaml:"set_fixture"`
	SetFlag       *yamlSetFlag    `yaml:"set_flag"`
	RevealItem    string          `yaml:"reveal_item"`
	RevealFixture string          `yaml:"reveal_fixture"`
	MoveItem      *yamlMoveItem   `yaml:"move_item"`
}

type yamlSetFixture struct {
	ID    string `yaml:"id"`
	State string `yaml:"state"`
}

type yamlSetFlag struct {
	Name  string `yaml:"name"`
	Value bool   `yaml:"value"`
}

type yamlMoveItem struct {
	ID string `yaml:"id"`
	To string `yaml:"to"`
}

type yamlHint struct {
	When yamlCondition `yaml:"when"`
	Text string        `yaml:"text"`
}

type yamlSceneSlot struct {
	Slot  string          `yaml:"slot"`
	Asset string          `yaml:"asset"`
	Cases []yamlSceneCase `yaml:"cases"`
}

type yamlSceneCase struct {
	When  yamlCondition `yaml:"when"`
	Asset string        `yaml:"asset"`
}

// Load reads and validates a room definition file. The optional script path
// is resolved relative to the file's directory.
//
// Precondition: path must point to a YAML file conforming to the room schema.
// Postcondition: Returns a validated Definition or a non-nil error.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room file %s: %w", path, err)
	}
	return LoadBytes(data, filepath.Dir(path))
}

// LoadBytes parses and validates a room definition from YAML bytes. baseDir
// anchors the optional script path; empty leaves it as authored.
//
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadBytes(data []byte, baseDir string) (*Definition, error) {
	var file yamlRoomFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing room YAML: %w", err)
	}

	def, err := convertYAMLRoom(file.Room)
	if err != nil {
		return nil, fmt.Errorf("converting room definition: %w", err)
	}
	if def.ScriptFile != "" && baseDir != "" && !filepath.IsAbs(def.ScriptFile) {
		def.ScriptFile = filepath.Join(baseDir, def.ScriptFile)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validating room definition: %w", err)
	}

	return def, nil
}

// convertYAMLRoom converts the parsed YAML structures into domain types.
// Shape problems that cannot be expressed in the domain model (an effect
// naming no mutation, a bad location string) surface here; semantic problems
// are left to Definition.Validate.
func convertYAMLRoom(yr yamlRoom) (*Definition, error) {
	def := &Definition{
		ID:                     yr.ID,
		Title:                  yr.Title,
		Brief:                  strings.TrimSpace(yr.Brief),
		Victory:                strings.TrimSpace(yr.Victory),
		TerminalFlag:           yr.TerminalFlag,
		ScriptFile:             yr.Script,
		ScriptInstructionLimit: yr.ScriptInstructionLimit,
		HintFallback:           strings.TrimSpace(yr.HintFallback),
	}

	for _, yf := range yr.Flags {
		def.Flags = append(def.Flags, Flag{Name: yf.Name, Initial: yf.Initial})
	}

	for _, yf := range yr.Fixtures {
		f := &Fixture{
			ID:            yf.ID,
			Name:          yf.Name,
			States:        yf.States,
			Initial:       yf.Initial,
			Hidden:        yf.Hidden,
			Openable:      yf.Openable,
			Searchable:    yf.Searchable,
			SearchedState: yf.SearchedState,
			Contains:      yf.Contains,
			Conceals:      yf.Conceals,
			Reveals:       yf.Reveals,
			Descriptions:  yf.Descriptions,
			Messages:      yf.Messages,
			OpenMessage:   strings.TrimSpace(yf.OpenMessage),
			SearchMessage: strings.TrimSpace(yf.SearchMessage),
			UnlockMessage: strings.TrimSpace(yf.UnlockMessage),
		}
		if f.Descriptions == nil {
			f.Descriptions = make(map[string]string)
		}
		if f.Messages == nil {
			f.Messages = make(map[string]string)
		}
		if yf.Lock != nil {
			f.Lock = &Lock{
				Key:           yf.Lock.Key,
				LockedState:   yf.Lock.LockedState,
				UnlockedState: yf.Lock.UnlockedState,
			}
		}
		for _, yo := range yf.Overrides {
			f.Overrides = append(f.Overrides, DescriptionOverride{
				State: yo.State,
				When:  convertYAMLCondition(yo.When),
				Text:  strings.TrimSpace(yo.Text),
			})
		}
		def.Fixtures = append(def.Fixtures, f)
	}

	for _, yi := range yr.Items {
		item := &Item{
			ID:          yi.ID,
			Name:        yi.Name,
			Description: strings.TrimSpace(yi.Description),
			Location:    ItemLocation(yi.Location),
			Hidden:      yi.Hidden,
			Portable:    true,
			Messages:    yi.Messages,
			TakeMessage: strings.TrimSpace(yi.TakeMessage),
		}
		if yi.Location == "" {
			item.Location = LocationRoom
		}
		if yi.Portable != nil {
			item.Portable = *yi.Portable
		}
		if item.Messages == nil {
			item.Messages = make(map[string]string)
		}
		def.Items = append(def.Items, item)
	}

	for i, yin := range yr.Interactions {
		in := Interaction{
			Item:       yin.Item,
			Target:     yin.Target,
			When:       convertYAMLCondition(yin.When),
			WhenScript: yin.WhenScript,
			Success:    strings.TrimSpace(yin.Success),
		}
		if yin.Fail != nil {
			in.Fail = &InteractionFail{
				Reason:  yin.Fail.Reason,
				Message: strings.TrimSpace(yin.Fail.Message),
			}
		}
		for j, ye := range yin.Effects {
			eff, err := convertYAMLEffect(ye)
			if err != nil {
				return nil, fmt.Errorf("interaction %d effect %d: %w", i, j, err)
			}
			in.Effects = append(in.Effects, eff)
		}
		def.Interactions = append(def.Interactions, in)
	}

	for _, yh := range yr.Hints {
		def.Hints = append(def.Hints, HintRule{
			When: convertYAMLCondition(yh.When),
			Text: strings.TrimSpace(yh.Text),
		})
	}

	for _, ys := range yr.Scenes {
		slot := SceneSlot{ID: ys.Slot, Asset: ys.Asset}
		for _, yc := range ys.Cases {
			slot.Cases = append(slot.Cases, SceneCase{
				When:  convertYAMLCondition(yc.When),
				Asset: yc.Asset,
			})
		}
		def.Scenes = append(def.Scenes, slot)
	}

	return def, nil
}

func convertYAMLCondition(yc yamlCondition) Condition {
	return Condition{
		Flags:        yc.Flags,
		Fixtures:     yc.Fixtures,
		HasItems:     yc.HasItems,
		MissingItems: yc.MissingItems,
	}
}

func convertYAMLEffect(ye yamlEffect) (Effect, error) {
	var (
		eff Effect
		set int
	)
	if ye.SetFixture != nil {
		eff = Effect{Kind: EffectSetFixtureState, Fixture: ye.SetFixture.ID, State: ye.SetFixture.State}
		set++
	}
	if ye.SetFlag != nil {
		eff = Effect{Kind: EffectSetFlag, Flag: ye.SetFlag.Name, Value: ye.SetFlag.Value}
		set++
	}
	if ye.RevealItem != "" {
		eff = Effect{Kind: EffectRevealItem, Item: ye.RevealItem}
		set++
	}
	if ye.RevealFixture != "" {
		eff = Effect{Kind: EffectRevealFixture, Fixture: ye.RevealFixture}
		set++
	}
	if ye.MoveItem != nil {
		eff = Effect{Kind: EffectMoveItem, Item: ye.MoveItem.ID, To: ItemLocation(ye.MoveItem.To)}
		set++
	}
	if set != 1 {
		return Effect{}, fmt.Errorf("effect must declare exactly one of set_fixture, set_flag, reveal_item, reveal_fixture, move_item; got %d", set)
	}
	return eff, nil
}
