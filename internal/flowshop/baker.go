package flowshop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedInput — входной файл не соответствует формату.
var ErrMalformedInput = errors.New("malformed input")

// LoadBaker читает экземпляр в формате Baker из файла.
func LoadBaker(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inst, err := ReadBaker(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// ReadBaker разбирает формат Baker:
//
//	# nJobs | nMachines
//	20 5
//	# m0 | m1 | ... (времена, затем дисперсии)
//	t0 t1 ... tm-1 v0 v1 ... vm-1
//	...
//
// Ожидаемое время работы равно детерминированному. Дисперсии сохраняются
// в Job.Variance только для вызывающего кода: ни makespan, ни ожидаемый makespan
// их не используют.
// При любой ошибке формата возвращается ошибка, оборачивающая ErrMalformedInput,
// и частично построенный экземпляр не отдаётся.
func ReadBaker(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			text := strings.TrimSpace(sc.Text())
			if text != "" {
				return text, true
			}
		}
		return "", false
	}

	if _, ok := next(); !ok {
		return nil, malformed(line, "missing header comment")
	}
	dims, ok := next()
	if !ok {
		return nil, malformed(line, "missing dimensions line")
	}
	fields := strings.Fields(dims)
	if len(fields) < 2 {
		return nil, malformed(line, "dimensions line must contain jobs and machines")
	}
	jobs, err := strconv.Atoi(fields[0])
	if err != nil || jobs <= 0 {
		return nil, malformed(line, fmt.Sprintf("invalid jobs count %q", fields[0]))
	}
	machines, err := strconv.Atoi(fields[1])
	if err != nil || machines <= 0 {
		return nil, malformed(line, fmt.Sprintf("invalid machines count %q", fields[1]))
	}
	if _, ok := next(); !ok {
		return nil, malformed(line, "missing times header comment")
	}

	inst := &Instance{Jobs: jobs, Machines: machines, Records: make([]*Job, jobs)}
	for i := 0; i < jobs; i++ {
		text, ok := next()
		if !ok {
			return nil, malformed(line, fmt.Sprintf("expected %d job rows, got %d", jobs, i))
		}
		row := strings.Fields(text)
		if len(row) < 2*machines {
			return nil, malformed(line, fmt.Sprintf("job %d: expected %d values, got %d", i+1, 2*machines, len(row)))
		}
		job := NewJob(i, machines)
		for m := 0; m < machines; m++ {
			t, err := strconv.ParseInt(row[m], 10, 32)
			if err != nil || t < 0 {
				return nil, malformed(line, fmt.Sprintf("job %d machine %d: invalid time %q", i+1, m, row[m]))
			}
			v, err := strconv.ParseFloat(row[machines+m], 64)
			if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, malformed(line, fmt.Sprintf("job %d machine %d: invalid variance %q", i+1, m, row[machines+m]))
			}
			job.SetTime(m, int32(t))
			job.SetExpTime(m, float64(t))
			job.SetVariance(m, v)
		}
		job.Finalize()
		inst.Records[i] = job
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return inst, nil
}

func malformed(line int, msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedInput, line, msg)
}
