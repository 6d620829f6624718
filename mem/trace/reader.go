package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// opInstructionFetch is the dinero-style op code for an instruction fetch.
// It is accepted as an alias of the absent op field.
const opInstructionFetch = 2

// FormatError reports a trace line that cannot be turned into a Reference.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("trace line %d %q: %s", e.Line, e.Text, e.Reason)
}

// ReadFile parses the trace stored in the file at path.
func ReadFile(path string) ([]Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	refs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return refs, nil
}

// Parse reads one reference per line from r. A line holds the instruction
// address, optionally followed by the op code and the data address. Blank
// lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]Reference, error) {
	var refs []Reference

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ref, err := parseLine(text)
		if err != nil {
			err.Line = lineNo
			return nil, err
		}

		refs = append(refs, ref)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	return refs, nil
}

func parseLine(text string) (Reference, *FormatError) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	fail := func(reason string) (Reference, *FormatError) {
		return Reference{}, &FormatError{Text: text, Reason: reason}
	}

	if len(fields) > 3 {
		return fail("too many fields")
	}

	values := []int64{NoAddress, NoAddress, NoAddress}
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 0, 64)
		if err != nil {
			return fail(fmt.Sprintf("field %d is not an integer", i+1))
		}

		values[i] = v
	}

	instAddr, op, dataAddr := values[0], values[1], values[2]

	if instAddr < 0 {
		return fail("instruction address must not be negative")
	}

	switch op {
	case int64(FetchOnly), opInstructionFetch:
		return Fetch(instAddr), nil
	case int64(Read), int64(Write):
		if dataAddr < 0 {
			return fail("data operation without a data address")
		}

		return Reference{
			InstructionAddress: instAddr,
			DataAddress:        dataAddr,
			Kind:               Kind(op),
		}, nil
	default:
		return fail(fmt.Sprintf("unknown op %d", op))
	}
}
