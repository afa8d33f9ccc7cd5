package gaffer

import "fmt"

// ============================================================================
// Shared Test Types
// ============================================================================

// TConfig is a leaf service with no dependencies.
type TConfig struct {
	Path string
}

// TLogger is the interface several test services satisfy.
type TLogger interface {
	Log(message string)
}

// TConsoleLogger logs to an in-memory line slice.
type TConsoleLogger struct {
	Lines []string
}

func (l *TConsoleLogger) Log(message string) {
	l.Lines = append(l.Lines, message)
}

func NewTConsoleLogger() *TConsoleLogger {
	return &TConsoleLogger{}
}

// TFileLogger is a second TLogger implementation for multiplicity tests.
type TFileLogger struct {
	Path string
}

func (l *TFileLogger) Log(message string) {}

func NewTFileLogger() *TFileLogger {
	return &TFileLogger{Path: "/dev/null"}
}

// TDatabase depends on a logger and a DSN.
type TDatabase struct {
	Logger TLogger
	DSN    string
}

func NewTDatabase(logger TLogger, dsn string) *TDatabase {
	return &TDatabase{Logger: logger, DSN: dsn}
}

// TService carries an int dependency, for literal-argument tests.
type TService struct {
	Dep int
}

func NewTService(dep int) *TService {
	return &TService{Dep: dep}
}

// TCounterService tracks how many times its constructor ran.
type TCounterService struct {
	Instance int
}

func newTCounterConstructor() func() *TCounterService {
	count := 0
	return func() *TCounterService {
		count++
		return &TCounterService{Instance: count}
	}
}

// TColor is a defined scalar ("backed enum") for enum binding tests.
type TColor int

const (
	TColorRed TColor = iota + 1
	TColorGreen
	TColorBlue
)

// TPalette has an enum-typed constructor parameter.
type TPalette struct {
	Primary TColor
}

func NewTPalette(primary TColor) *TPalette {
	return &TPalette{Primary: primary}
}

// TAggregator has a variadic constructor.
type TAggregator struct {
	Name  string
	Parts []int
}

func NewTAggregator(name string, parts ...int) *TAggregator {
	return &TAggregator{Name: name, Parts: parts}
}

// TSink collects every TLogger, for collect-all reference tests.
type TSink struct {
	Loggers []TLogger
}

func NewTSink(loggers ...TLogger) *TSink {
	return &TSink{Loggers: loggers}
}

// TResettable records Reset lifecycle notifications.
type TResettable struct {
	ResetCalls int
}

func (r *TResettable) ResetService() {
	r.ResetCalls++
}

func NewTResettable() *TResettable {
	return &TResettable{}
}

// TGadget is used for struct-type entities and bindings.
type TGadget struct {
	Label  string
	Level  int
	Logger TLogger

	configured []string
}

func (g *TGadget) Configure(option string) {
	g.configured = append(g.configured, option)
}

func (g *TGadget) Fail(option string) error {
	return fmt.Errorf("cannot configure %q", option)
}
