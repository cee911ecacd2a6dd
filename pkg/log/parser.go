// Package log parses program log lines of the form the ledger runtime emits
// ("Program X invoke [N]", "Program X failed: ...") and recovers the failing
// program and its custom error code from them.
//
// Example usage:
//
//	parser := log.NewParser()
//	if f := parser.Failure(logMessages); f != nil && f.HasCode {
//	    // f.ProgramID rejected the transaction with f.Code
//	}
package log

import (
	"regexp"
	"strconv"
)

// LogType represents the type of a log message.
type LogType int

const (
	// LogTypeUnknown represents an unrecognized log message.
	LogTypeUnknown LogType = iota
	// LogTypeInvoke represents a "Program X invoke [N]" message.
	LogTypeInvoke
	// LogTypeSuccess represents a "Program X success" message.
	LogTypeSuccess
	// LogTypeFailed represents a "Program X failed: REASON" message.
	LogTypeFailed
	// LogTypeLog represents a "Program log: MESSAGE" message.
	LogTypeLog
	// LogTypeComputeUnits represents a compute units consumed message.
	LogTypeComputeUnits
)

// String returns the string representation of LogType.
func (lt LogType) String() string {
	switch lt {
	case LogTypeInvoke:
		return "Invoke"
	case LogTypeSuccess:
		return "Success"
	case LogTypeFailed:
		return "Failed"
	case LogTypeLog:
		return "Log"
	case LogTypeComputeUnits:
		return "ComputeUnits"
	default:
		return "Unknown"
	}
}

// ParsedLog represents a parsed log message with its type and extracted data.
type ParsedLog struct {
	Type LogType

	// StackHeight is the call stack depth (1-indexed). Only set for Invoke logs.
	StackHeight int

	// ProgramID is the program named by "Program X ..." messages.
	ProgramID string

	// Message is the text of "Program log:" messages.
	Message string

	// Reason is the text after "failed: " in Failed logs.
	Reason string

	// Code is the custom program error code of a Failed log, when HasCode is set.
	Code    uint32
	HasCode bool

	// ComputeUnits is the number of compute units consumed.
	ComputeUnits *uint64

	RawLog string
}

// Failure describes the program that failed a transaction.
type Failure struct {
	ProgramID   string
	StackHeight int
	Reason      string
	Code        uint32
	HasCode     bool

	// Account is the account an Anchor constraint failed on, when the failing
	// program logged one.
	Account string
}

// LogParser parses program logs.
type LogParser struct {
	patterns *logPatterns
}

type logPatterns struct {
	invoke       *regexp.Regexp
	success      *regexp.Regexp
	failed       *regexp.Regexp
	customCode   *regexp.Regexp
	log          *regexp.Regexp
	computeUnits *regexp.Regexp
	anchorError  *regexp.Regexp
}

// NewParser creates a new LogParser.
func NewParser() *LogParser {
	return &LogParser{
		patterns: &logPatterns{
			invoke:       regexp.MustCompile(`^Program (\S+) invoke \[(\d+)\]`),
			success:      regexp.MustCompile(`^Program (\S+) success`),
			failed:       regexp.MustCompile(`^Program (\S+) failed: (.+)$`),
			customCode:   regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`),
			log:          regexp.MustCompile(`^Program log: (.+)$`),
			computeUnits: regexp.MustCompile(`^Program (\S+) consumed (\d+) of \d+ compute units`),
			anchorError:  regexp.MustCompile(`^AnchorError caused by account: (\w+)\.`),
		},
	}
}

// Parse parses a single log message and returns a ParsedLog.
func (p *LogParser) Parse(logMessage string) *ParsedLog {
	result := &ParsedLog{
		Type:   LogTypeUnknown,
		RawLog: logMessage,
	}

	if matches := p.patterns.invoke.FindStringSubmatch(logMessage); matches != nil {
		result.Type = LogTypeInvoke
		result.ProgramID = matches[1]
		result.StackHeight, _ = strconv.Atoi(matches[2])
		return result
	}

	if matches := p.patterns.success.FindStringSubmatch(logMessage); matches != nil {
		result.Type = LogTypeSuccess
		result.ProgramID = matches[1]
		return result
	}

	if matches := p.patterns.failed.FindStringSubmatch(logMessage); matches != nil {
		result.Type = LogTypeFailed
		result.ProgramID = matches[1]
		result.Reason = matches[2]
		if code := p.patterns.customCode.FindStringSubmatch(matches[2]); code != nil {
			if v, err := strconv.ParseUint(code[1], 16, 32); err == nil {
				result.Code = uint32(v)
				result.HasCode = true
			}
		}
		return result
	}

	if matches := p.patterns.log.FindStringSubmatch(logMessage); matches != nil {
		result.Type = LogTypeLog
		result.Message = matches[1]
		return result
	}

	if matches := p.patterns.computeUnits.FindStringSubmatch(logMessage); matches != nil {
		result.Type = LogTypeComputeUnits
		result.ProgramID = matches[1]
		if cu, err := strconv.ParseUint(matches[2], 10, 64); err == nil {
			result.ComputeUnits = &cu
		}
		return result
	}

	return result
}

// ParseAll parses all log messages and returns a slice of ParsedLog.
func (p *LogParser) ParseAll(logMessages []string) []*ParsedLog {
	results := make([]*ParsedLog, 0, len(logMessages))
	for _, log := range logMessages {
		results = append(results, p.Parse(log))
	}
	return results
}

// ExtractProgramLogs extracts all "Program log:" messages.
func (p *LogParser) ExtractProgramLogs(logMessages []string) []string {
	var logs []string
	for _, log := range logMessages {
		if parsed := p.Parse(log); parsed.Type == LogTypeLog {
			logs = append(logs, parsed.Message)
		}
	}
	return logs
}

// Failure returns the innermost failed program, or nil if no program failed.
// A failing inner call is logged before its callers fail, so the first Failed
// line is the origin of the error.
func (p *LogParser) Failure(logMessages []string) *Failure {
	var stack []int
	var account string
	for _, log := range logMessages {
		parsed := p.Parse(log)
		switch parsed.Type {
		case LogTypeInvoke:
			stack = append(stack, parsed.StackHeight)
			account = ""
		case LogTypeLog:
			if m := p.patterns.anchorError.FindStringSubmatch(parsed.Message); m != nil {
				account = m[1]
			}
		case LogTypeSuccess:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case LogTypeFailed:
			height := 0
			if len(stack) > 0 {
				height = stack[len(stack)-1]
			}
			return &Failure{
				ProgramID:   parsed.ProgramID,
				StackHeight: height,
				Reason:      parsed.Reason,
				Code:        parsed.Code,
				HasCode:     parsed.HasCode,
				Account:     account,
			}
		}
	}
	return nil
}
