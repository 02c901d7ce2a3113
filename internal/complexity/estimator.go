// Package complexity provides a fast pre-scan complexity estimate used
// to decide which functions deserve full control-flow analysis.
package complexity

import (
	"regexp"
	"strings"
)

// Scan bounds. Estimation reads at most maxScanLines of a body, and
// bodies under minFunctionLines are not analyzed at all.
const (
	maxScanLines     = 100
	minFunctionLines = 3
)

// Keyword weights. Scores accumulate in half-point units internally so
// flow-transfer keywords can weigh 0.5 without floating point.
const (
	weightConditional  = 2 // +1 per if / else if
	weightLoop         = 4 // +2 per loop or switch
	weightTry          = 2 // +1 per try
	weightCatch        = 2 // +1 per catch
	weightFlowTransfer = 1 // +0.5 per goto/break/continue/return
	weightSuspendPoint = 4 // +2 per await/yield suspension
	weightMediumBody   = 4 // +2 when body exceeds 20 lines
	weightLargeBody    = 6 // +3 when body exceeds 50 lines
)

var (
	conditionalRe  = regexp.MustCompile(`\b(?:if|elif|elsif)\b`)
	loopRe         = regexp.MustCompile(`\b(?:for|while|foreach|switch|match|select)\b`)
	doLoopRe       = regexp.MustCompile(`\bdo\s*\{`)
	tryRe          = regexp.MustCompile(`\btry\b`)
	catchRe        = regexp.MustCompile(`\b(?:catch|except|rescue)\b`)
	flowTransferRe = regexp.MustCompile(`\b(?:goto|break|continue|return)\b`)
	suspendRe      = regexp.MustCompile(`\b(?:await|yield|co_await|co_yield|co_return)\b`)
)

// Estimate produces an integer complexity estimate for a function body
// without building control-flow blocks. Bodies shorter than three lines
// score zero and are skipped by the gate outright.
func Estimate(bodyLines []string) int {
	if len(bodyLines) < minFunctionLines {
		return 0
	}

	scan := bodyLines
	if len(scan) > maxScanLines {
		scan = scan[:maxScanLines]
	}

	halfPoints := 0
	for _, line := range scan {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		halfPoints += weightConditional * len(conditionalRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightLoop * len(loopRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightLoop * len(doLoopRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightTry * len(tryRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightCatch * len(catchRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightFlowTransfer * len(flowTransferRe.FindAllStringIndex(trimmed, -1))
		halfPoints += weightSuspendPoint * len(suspendRe.FindAllStringIndex(trimmed, -1))
	}

	// Size adjustments favor deep analysis of long bodies even when the
	// keyword density is low
	if len(bodyLines) > 50 {
		halfPoints += weightLargeBody
	} else if len(bodyLines) > 20 {
		halfPoints += weightMediumBody
	}

	return halfPoints / 2
}
