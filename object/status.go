package object

import "strconv"

// Status is the result of every invocation. Zero is success, positive
// values are application-level errors and negative values are produced by
// transports.
//
// Status implements error so that non-OK values can travel through Go
// error returns unchanged; use Err to obtain a nil error for OK.
type Status int32

// Generic status codes.
const (
	OK            Status = 0
	Error         Status = 1 // non-specific error
	ErrorInvalid  Status = 2 // unsupported or unrecognized request
	ErrorSizeIn   Status = 3 // supplied buffer or string too large
	ErrorSizeOut  Status = 4 // supplied output buffer too small
	ErrorMem      Status = 5 // out of memory
	ErrorReserved Status = 6 // 6-9 are reserved

	// ErrorUserBase is the first interface-defined error code.
	ErrorUserBase Status = 10
)

// Transport status codes.
const (
	ErrorDefunct   Status = -90  // object no longer exists
	ErrorAbort     Status = -91  // calling thread must exit
	ErrorBadObj    Status = -92  // invalid object context
	ErrorNoSlots   Status = -93  // caller's object table full
	ErrorMaxArgs   Status = -94  // too many args
	ErrorMaxData   Status = -95  // buffers too large
	ErrorUnavail   Status = -96  // the request could not be processed
	ErrorKMem      Status = -97  // kernel out of memory
	ErrorRemote    Status = -98  // local method sent to remote object
	ErrorBusy      Status = -99  // cannot forward invocation, callee busy
	ErrorAuth      Status = -100 // cannot authenticate message
	ErrorReplay    Status = -101 // message has been replayed
	ErrorMaxReplay Status = -102 // replay counter cannot be incremented
	ErrorTimeout   Status = -103 // target took too long to respond
	ErrorWrongObj  Status = -104 // wrong type of object
)

var statusNames = map[Status]string{
	OK:             "OK",
	Error:          "Generic",
	ErrorInvalid:   "Invalid",
	ErrorSizeIn:    "BufferTooLarge",
	ErrorSizeOut:   "BufferTooSmall",
	ErrorMem:       "OutOfMemory",
	6:              "Reserved1",
	7:              "Reserved2",
	8:              "Reserved3",
	9:              "Reserved4",
	ErrorDefunct:   "ObjectDefunct",
	ErrorAbort:     "ServiceAbnormallyAborted",
	ErrorBadObj:    "BadObject",
	ErrorNoSlots:   "ObjectTableFull",
	ErrorMaxArgs:   "CallExceededMaxArguments",
	ErrorMaxData:   "CallExceededMaxData",
	ErrorUnavail:   "ObjectUnavailable",
	ErrorKMem:      "KernelOutOfMemory",
	ErrorRemote:    "LocalMethodSentToRemoteObject",
	ErrorBusy:      "RemoteServiceIsBusy",
	ErrorAuth:      "CannotAuthenticateMessage",
	ErrorReplay:    "RequestHasBeenReplayed",
	ErrorMaxReplay: "ReplayCounterCannotBeIncremented",
	ErrorTimeout:   "InvokeTimeout",
	ErrorWrongObj:  "WrongObjectType",
}

// String returns a readable name for s.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "InterfaceSpecificError(" + strconv.Itoa(int(s)) + ")"
}

// Error implements error.
func (s Status) Error() string {
	return "object: " + s.String() + " (" + strconv.Itoa(int(s)) + ")"
}

// IsOK reports whether s is success.
func (s Status) IsOK() bool { return s == OK }

// IsTransport reports whether s is in the transport (negative) range.
func (s Status) IsTransport() bool { return s < 0 }

// IsUser reports whether s is an interface-defined error.
func (s Status) IsUser() bool { return s >= ErrorUserBase }

// Err returns nil for OK and s otherwise.
func (s Status) Err() error {
	if s == OK {
		return nil
	}
	return s
}
