package log

// Nop discards everything. It is the default logger for library use.
type Nop struct{}

// NewNop returns a logger that drops all entries.
func NewNop() Nop { return Nop{} }

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}

func (n Nop) With(...Field) Logger { return n }
