package recorder

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// CSV writes rows to a plain or gzip compressed CSV file with a header line.
type CSV struct {
	path       string
	compress   bool
	file       *os.File
	gz         *gzip.Writer
	buf        *bufio.Writer
	headerDone bool
}

func NewCSV(path string, compress bool) *CSV {
	return &CSV{path: path, compress: compress}
}

func (c *CSV) Init() error {
	fh, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create recording file: %w", err)
	}

	c.file = fh

	var out io.Writer = fh
	if c.compress {
		c.gz = gzip.NewWriter(fh)
		out = c.gz
	}

	c.buf = bufio.NewWriter(out)

	return nil
}

func (c *CSV) Record(row *Row) error {
	if c.buf == nil {
		return fmt.Errorf("record CSV row: backend not initialised")
	}

	rows := []*Row{row}

	var err error
	if c.headerDone {
		err = gocsv.MarshalWithoutHeaders(&rows, c.buf)
	} else {
		err = gocsv.Marshal(&rows, c.buf)
		c.headerDone = true
	}

	if err != nil {
		return fmt.Errorf("marshal CSV row: %w", err)
	}

	return nil
}

func (c *CSV) Close() error {
	if c.file == nil {
		return nil
	}

	var errs []error

	if err := c.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush recording: %w", err))
	}

	if c.gz != nil {
		if err := c.gz.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gzip writer: %w", err))
		}
	}

	if err := c.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close recording file: %w", err))
	}

	c.file = nil

	return errors.Join(errs...)
}
