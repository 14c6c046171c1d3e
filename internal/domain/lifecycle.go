package domain

import "strings"

// LifecycleStatus is the build-pipeline stage of an automation version.
type LifecycleStatus string

const (
	StatusIntakeInProgress       LifecycleStatus = "IntakeInProgress"
	StatusNeedsPricing           LifecycleStatus = "NeedsPricing"
	StatusAwaitingClientApproval LifecycleStatus = "AwaitingClientApproval"
	StatusReadyForBuild          LifecycleStatus = "ReadyForBuild"
	StatusBuildInProgress        LifecycleStatus = "BuildInProgress"
	StatusQATesting              LifecycleStatus = "QATesting"
	StatusLive                   LifecycleStatus = "Live"
	StatusArchived               LifecycleStatus = "Archived"
)

// LifecycleOrder is the fixed forward ordering of lifecycle statuses.
var LifecycleOrder = []LifecycleStatus{
	StatusIntakeInProgress,
	StatusNeedsPricing,
	StatusAwaitingClientApproval,
	StatusReadyForBuild,
	StatusBuildInProgress,
	StatusQATesting,
	StatusLive,
	StatusArchived,
}

// Index returns the position of s in LifecycleOrder, or -1 for unknown values.
func (s LifecycleStatus) Index() int {
	for i, candidate := range LifecycleOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s LifecycleStatus) Valid() bool {
	return s.Index() >= 0
}

// Next returns the immediate successor of s. The second result is false for
// Archived and for unknown values.
func (s LifecycleStatus) Next() (LifecycleStatus, bool) {
	i := s.Index()
	if i < 0 || i == len(LifecycleOrder)-1 {
		return "", false
	}
	return LifecycleOrder[i+1], true
}

// LifecycleTransition is a single permitted edge in the lifecycle graph.
type LifecycleTransition struct {
	Src LifecycleStatus
	Dst LifecycleStatus
}

// LifecycleTransitions lists every single-step forward edge. Self-transitions
// are implicit and not listed.
var LifecycleTransitions = buildLifecycleTransitions()

func buildLifecycleTransitions() []LifecycleTransition {
	out := make([]LifecycleTransition, 0, len(LifecycleOrder)-1)
	for i := 0; i < len(LifecycleOrder)-1; i++ {
		out = append(out, LifecycleTransition{Src: LifecycleOrder[i], Dst: LifecycleOrder[i+1]})
	}
	return out
}

// CanTransition reports whether a status may move from one value to another.
// Only self-transitions and single steps forward are allowed.
func CanTransition(from, to LifecycleStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	next, ok := from.Next()
	return ok && next == to
}

// TransitionRequest describes an attempted lifecycle move by an actor.
type TransitionRequest struct {
	From      LifecycleStatus
	To        LifecycleStatus
	ActorRole LifecycleRole
	Reason    string
}

// ApplyTransition validates req against the transition graph and the role
// policy and returns the resulting status.
func ApplyTransition(req TransitionRequest) (LifecycleStatus, error) {
	if !CanTransition(req.From, req.To) {
		return "", &TransitionError{From: string(req.From), To: string(req.To)}
	}
	if !req.ActorRole.CanTransition() {
		return "", &ForbiddenError{Role: req.ActorRole, From: string(req.From), To: string(req.To)}
	}
	return req.To, nil
}

// lifecycleAliases maps normalized free-text status names to statuses.
// Keys are produced by normalizeStatusKey.
var lifecycleAliases = map[string]LifecycleStatus{
	"intakeinprogress":       StatusIntakeInProgress,
	"intake":                 StatusIntakeInProgress,
	"draft":                  StatusIntakeInProgress,
	"needspricing":           StatusNeedsPricing,
	"pricing":                StatusNeedsPricing,
	"submitted":              StatusNeedsPricing,
	"awaitingclientapproval": StatusAwaitingClientApproval,
	"awaitingapproval":       StatusAwaitingClientApproval,
	"pendingapproval":        StatusAwaitingClientApproval,
	"quotesent":              StatusAwaitingClientApproval,
	"readyforbuild":          StatusReadyForBuild,
	"readytobuild":           StatusReadyForBuild,
	"approved":               StatusReadyForBuild,
	"buildinprogress":        StatusBuildInProgress,
	"building":               StatusBuildInProgress,
	"inbuild":                StatusBuildInProgress,
	"qatesting":              StatusQATesting,
	"qa":                     StatusQATesting,
	"testing":                StatusQATesting,
	"live":                   StatusLive,
	"active":                 StatusLive,
	"deployed":               StatusLive,
	"archived":               StatusArchived,
}

// ResolveLifecycleStatus maps a loosely formatted status string such as
// "Awaiting Approval" or "build_in_progress" onto a LifecycleStatus.
func ResolveLifecycleStatus(raw string) (LifecycleStatus, error) {
	if status, ok := lifecycleAliases[normalizeStatusKey(raw)]; ok {
		return status, nil
	}
	return "", &UnknownStatusError{Value: raw}
}

// LifecycleAliases returns a copy of the alias table.
func LifecycleAliases() map[string]LifecycleStatus {
	out := make(map[string]LifecycleStatus, len(lifecycleAliases))
	for k, v := range lifecycleAliases {
		out[k] = v
	}
	return out
}

func normalizeStatusKey(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
