// Package config assembles the run configuration from the environment and
// validates it before any work starts.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/export"
	"github.com/OFFIS-RIT/charnet/pkg/graph"
	"github.com/OFFIS-RIT/charnet/pkg/store"
	"github.com/OFFIS-RIT/charnet/pkg/text"

	"github.com/go-playground/validator"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StorageFile = "file"
	StorageS3   = "s3"
)

// Config holds every setting of a run. Paths are object keys when Storage
// is "s3".
type Config struct {
	TextPath    string `validate:"required"`
	DictPath    string `validate:"required"`
	SynonymPath string `validate:"required"`
	NodePath    string `validate:"required"`
	EdgePath    string `validate:"required"`

	MinEdgeWeight      int    `validate:"min=0"`
	WriteMode          string `validate:"oneof=overwrite append"`
	NameTag            string
	StrictSynonyms     bool
	ParagraphDelimiter string `validate:"required"`
	LineEnding         string `validate:"oneof=crlf lf"`
	Parallel           int    `validate:"min=1"`

	Storage string `validate:"oneof=file s3"`
	Bucket  string

	Debug bool
}

var escapes = strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\t`, "\t")

// UnescapeDelimiter turns the escape sequences \n, \r and \t into the
// characters they name, so a delimiter can be given on one line.
func UnescapeDelimiter(value string) string {
	return escapes.Replace(value)
}

// FromEnv reads the configuration from the environment, falling back to
// the defaults for anything unset.
func FromEnv() Config {
	return Config{
		TextPath:    util.GetEnv("CHARNET_TEXT_PATH"),
		DictPath:    util.GetEnv("CHARNET_DICT_PATH"),
		SynonymPath: util.GetEnv("CHARNET_SYNONYM_PATH"),
		NodePath:    util.GetEnvString("CHARNET_NODE_PATH", "node.csv"),
		EdgePath:    util.GetEnvString("CHARNET_EDGE_PATH", "edge.csv"),

		MinEdgeWeight:      util.GetEnvInt("CHARNET_MIN_EDGE_WEIGHT", graph.DefaultMinEdgeWeight),
		WriteMode:          util.GetEnvString("CHARNET_WRITE_MODE", string(store.WriteModeOverwrite)),
		NameTag:            util.GetEnv("CHARNET_NAME_TAG"),
		StrictSynonyms:     util.GetEnvBool("CHARNET_STRICT_SYNONYMS", false),
		ParagraphDelimiter: UnescapeDelimiter(util.GetEnvString("CHARNET_PARAGRAPH_DELIMITER", text.DefaultParagraphDelimiter)),
		LineEnding:         util.GetEnvString("CHARNET_LINE_ENDING", string(export.LineEndingCRLF)),
		Parallel:           util.GetEnvInt("CHARNET_PARALLEL", 4),

		Storage: util.GetEnvString("CHARNET_STORAGE", StorageFile),
		Bucket:  util.GetEnvString("AWS_BUCKET", "charnet"),

		Debug: util.GetEnvBool("DEBUG", false),
	}
}

// Validate reports every invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	if c.Storage == StorageS3 && c.Bucket == "" {
		return fmt.Errorf("%w: s3 storage needs a bucket", ErrInvalidConfig)
	}
	return nil
}

func (c Config) GraphClientParams() graph.NewGraphClientParams {
	minWeight := c.MinEdgeWeight
	return graph.NewGraphClientParams{
		ParallelParagraphs: c.Parallel,
		ParagraphDelimiter: c.ParagraphDelimiter,
		MinEdgeWeight:      &minWeight,
		NameTag:            c.NameTag,
		StrictSynonyms:     c.StrictSynonyms,
	}
}

func (c Config) TableOptions() store.TableOptions {
	return store.TableOptions{
		Mode:       store.WriteMode(c.WriteMode),
		LineEnding: export.LineEnding(c.LineEnding),
	}
}
