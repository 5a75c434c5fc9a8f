package client

import (
	"github.com/paul-bokelman/hem/client/internal/api"
	"github.com/paul-bokelman/hem/client/internal/identity"
	"github.com/paul-bokelman/hem/client/internal/localstate"
	"github.com/paul-bokelman/hem/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Domain entities
	User   = types.User
	Action = types.Action
	Macro  = types.Macro
	Upload = types.Upload
	Audio  = types.Audio

	// Requests
	ActionInput = types.ActionInput
	MacroInput  = types.MacroInput

	// Identity state
	IdentityState = identity.State
	IdentityStore = identity.Store

	// Local persistence
	SQLiteStore = localstate.SQLiteStore
	MemoryStore = localstate.MemoryStore
)

const (
	Unresolved = identity.Unresolved
	Resolving  = identity.Resolving
	Resolved   = identity.Resolved
	Failed     = identity.Failed
)

// DefaultRecordingName is the multipart filename used when none is given.
const DefaultRecordingName = api.DefaultRecordingName

// InputFromMacro builds the edit payload for an existing macro.
func InputFromMacro(m Macro) MacroInput { return types.InputFromMacro(m) }
