package wizard

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// State identifies the current wizard screen
type State int

const (
	StateWelcome State = iota
	StateInputs
	StateTestConnection
	StateSummary
	StateCreating
	StateDone
	StateError
)

// Field indexes into Model.inputs
const (
	fieldDatabaseURL = iota
	fieldAdminURL
	fieldOwner
	fieldArtifactsDir
	fieldCount
)

// Answers holds everything the wizard collects
type Answers struct {
	DatabaseURL  string
	AdminURL     string
	Owner        string
	ArtifactsDir string
}

// Model is the Bubble Tea model for the init wizard
type Model struct {
	state  State
	inputs []textinput.Model
	focus  int

	force bool

	testingConnection    bool
	connectionTestResult string
	connectionError      error

	resultPath string
	err        error

	width  int
	height int
}

// answers reads the current input values
func (m Model) answers() Answers {
	return Answers{
		DatabaseURL:  m.inputs[fieldDatabaseURL].Value(),
		AdminURL:     m.inputs[fieldAdminURL].Value(),
		Owner:        m.inputs[fieldOwner].Value(),
		ArtifactsDir: m.inputs[fieldArtifactsDir].Value(),
	}
}

// Err returns the terminal error, if the wizard ended in one
func (m Model) Err() error {
	return m.err
}
