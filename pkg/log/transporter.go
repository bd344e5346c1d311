package log

// Transporter is a log destination such as stdout or a file.
type Transporter interface {
	Name() string

	// Write delivers one entry. Errors are reported on stderr by the buffer.
	Write(entry Entry) error

	// Close releases resources. Write must not be called afterwards.
	Close() error
}

type noopTransporter struct{}

func (noopTransporter) Name() string      { return "noop" }
func (noopTransporter) Write(Entry) error { return nil }
func (noopTransporter) Close() error      { return nil }
