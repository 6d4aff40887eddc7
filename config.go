package rowbinary

import (
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/parquet-go/rowbinary/compress"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxStringLength     = 1 << 30
	DefaultMaxCollectionLength = 1 << 30
	DefaultMaxColumns          = 1 << 20
	DefaultReadBufferSize      = 64 * 1024
)

// The DecoderConfig type carries configuration options for decoders and
// column headers.
//
// DecoderConfig implements the DecoderOption interface so it can be used
// directly as argument to NewDecoder or DecodeHeader when needed, for example:
//
//	decoder, err := rowbinary.NewDecoder(columnType, &rowbinary.DecoderConfig{
//		Location: time.Local,
//	})
type DecoderConfig struct {
	// Location of DateTime and DateTime64 values of columns declared without
	// a time zone. Defaults to UTC.
	Location *time.Location
	// Longest String value accepted, in bytes. Longer values are reported as
	// protocol violations instead of waiting for more data.
	MaxStringLength int
	// Largest number of elements accepted in an Array or Map value.
	MaxCollectionLength int
	// Largest number of columns accepted in a header.
	MaxColumns int
}

// DefaultDecoderConfig returns a new DecoderConfig value initialized with the
// default decoder configuration.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Location:            time.UTC,
		MaxStringLength:     DefaultMaxStringLength,
		MaxCollectionLength: DefaultMaxCollectionLength,
		MaxColumns:          DefaultMaxColumns,
	}
}

// NewDecoderConfig constructs a new decoder configuration applying the options
// passed as arguments.
func NewDecoderConfig(options ...DecoderOption) (*DecoderConfig, error) {
	config := DefaultDecoderConfig()
	config.Apply(options...)
	return config, config.Validate()
}

// Apply applies the given list of options to c.
func (c *DecoderConfig) Apply(options ...DecoderOption) {
	for _, opt := range options {
		opt.ConfigureDecoder(c)
	}
}

// ConfigureDecoder applies configuration options from c to config.
func (c *DecoderConfig) ConfigureDecoder(config *DecoderConfig) {
	*config = DecoderConfig{
		Location:            coalesceLocation(c.Location, config.Location),
		MaxStringLength:     coalesceInt(c.MaxStringLength, config.MaxStringLength),
		MaxCollectionLength: coalesceInt(c.MaxCollectionLength, config.MaxCollectionLength),
		MaxColumns:          coalesceInt(c.MaxColumns, config.MaxColumns),
	}
}

// ConfigureReader applies configuration options from c to the decoder
// configuration of config.
func (c *DecoderConfig) ConfigureReader(config *ReaderConfig) {
	c.ConfigureDecoder(&config.DecoderConfig)
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *DecoderConfig) Validate() error {
	const baseName = "rowbinary.(*DecoderConfig)."
	return firstError(
		validateNotNil(baseName+"Location", c.Location),
		validatePositiveInt(baseName+"MaxStringLength", c.MaxStringLength),
		validatePositiveInt(baseName+"MaxCollectionLength", c.MaxCollectionLength),
		validatePositiveInt(baseName+"MaxColumns", c.MaxColumns),
	)
}

// The ReaderConfig type carries configuration options for readers.
//
// ReaderConfig implements the ReaderOption interface so it can be used
// directly as argument to NewReader when needed.
type ReaderConfig struct {
	DecoderConfig
	// Codec decompressing the input stream, nil when the stream is not
	// compressed.
	Compression compress.Codec
	// Number of bytes requested from the input stream each time the reader
	// needs more data.
	ReadBufferSize int
	// Logger receiving debug information about the stream, output is
	// discarded by default.
	Logger logrus.FieldLogger
}

// DefaultReaderConfig returns a new ReaderConfig value initialized with the
// default reader configuration.
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		DecoderConfig:  *DefaultDecoderConfig(),
		ReadBufferSize: DefaultReadBufferSize,
		Logger:         discardLogger(),
	}
}

// NewReaderConfig constructs a new reader configuration applying the options
// passed as arguments.
func NewReaderConfig(options ...ReaderOption) (*ReaderConfig, error) {
	config := DefaultReaderConfig()
	config.Apply(options...)
	return config, config.Validate()
}

// Apply applies the given list of options to c.
func (c *ReaderConfig) Apply(options ...ReaderOption) {
	for _, opt := range options {
		opt.ConfigureReader(c)
	}
}

// ConfigureReader applies configuration options from c to config.
func (c *ReaderConfig) ConfigureReader(config *ReaderConfig) {
	c.DecoderConfig.ConfigureDecoder(&config.DecoderConfig)
	if c.Compression != nil {
		config.Compression = c.Compression
	}
	config.ReadBufferSize = coalesceInt(c.ReadBufferSize, config.ReadBufferSize)
	if c.Logger != nil {
		config.Logger = c.Logger
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *ReaderConfig) Validate() error {
	const baseName = "rowbinary.(*ReaderConfig)."
	return firstError(
		c.DecoderConfig.Validate(),
		validatePositiveInt(baseName+"ReadBufferSize", c.ReadBufferSize),
		validateNotNil(baseName+"Logger", c.Logger),
	)
}

// DecoderOption is an interface implemented by types that carry configuration
// options for decoders.
type DecoderOption interface {
	ConfigureDecoder(*DecoderConfig)
}

// ReaderOption is an interface implemented by types that carry configuration
// options for readers.
type ReaderOption interface {
	ConfigureReader(*ReaderConfig)
}

// Option is implemented by the options that apply to both decoders and
// readers.
type Option interface {
	DecoderOption
	ReaderOption
}

// Location returns an option setting the location of DateTime and DateTime64
// values of columns that do not declare a time zone.
func Location(loc *time.Location) Option {
	return decoderOption(func(config *DecoderConfig) { config.Location = loc })
}

// MaxStringLength returns an option configuring the longest accepted String
// value.
func MaxStringLength(n int) Option {
	return decoderOption(func(config *DecoderConfig) { config.MaxStringLength = n })
}

// MaxCollectionLength returns an option configuring the largest accepted
// number of elements in Array and Map values.
func MaxCollectionLength(n int) Option {
	return decoderOption(func(config *DecoderConfig) { config.MaxCollectionLength = n })
}

// MaxColumns returns an option configuring the largest number of columns
// accepted in a header.
func MaxColumns(n int) Option {
	return decoderOption(func(config *DecoderConfig) { config.MaxColumns = n })
}

// Compression returns a reader option decompressing the input stream with
// the given codec.
func Compression(codec compress.Codec) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.Compression = codec })
}

// ReadBufferSize returns a reader option configuring how many bytes are read
// from the input stream at a time.
func ReadBufferSize(size int) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.ReadBufferSize = size })
}

// Logger returns a reader option configuring the logger of the reader.
func Logger(logger logrus.FieldLogger) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.Logger = logger })
}

type decoderOption func(*DecoderConfig)

func (opt decoderOption) ConfigureDecoder(config *DecoderConfig) { opt(config) }

func (opt decoderOption) ConfigureReader(config *ReaderConfig) { opt(&config.DecoderConfig) }

type readerOption func(*ReaderConfig)

func (opt readerOption) ConfigureReader(config *ReaderConfig) { opt(config) }

func coalesceInt(i1, i2 int) int {
	if i1 != 0 {
		return i1
	}
	return i2
}

func coalesceLocation(l1, l2 *time.Location) *time.Location {
	if l1 != nil {
		return l1
	}
	return l2
}

func validatePositiveInt(optionName string, optionValue int) error {
	if optionValue > 0 {
		return nil
	}
	return errors.Errorf("%s: must be positive but got %d", optionName, optionValue)
}

func validateNotNil(optionName string, optionValue any) error {
	switch v := optionValue.(type) {
	case *time.Location:
		if v != nil {
			return nil
		}
	case logrus.FieldLogger:
		if v != nil {
			return nil
		}
	}
	return errors.Errorf("%s: must not be nil", optionName)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
