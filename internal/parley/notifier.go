package parley

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticePermissionDenied
	NoticeTransport
	NoticeEmptyResult
	NoticeStorage
	NoticeBusy
	NoticeDevice
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeInfo:
		return "info"
	case NoticePermissionDenied:
		return "permission-denied"
	case NoticeTransport:
		return "transport"
	case NoticeEmptyResult:
		return "empty-result"
	case NoticeStorage:
		return "storage"
	case NoticeBusy:
		return "busy"
	case NoticeDevice:
		return "device"
	default:
		return "unknown"
	}
}

// IsFailure reports whether the notice reports something going wrong.
func (k NoticeKind) IsFailure() bool {
	return k != NoticeInfo
}

// Notice is a transient, non-blocking message for the user.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Notifier surfaces notices to the user. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

// Notice texts shown to the user.
const (
	textRecordingStarted     = "Recording started"
	textRecordingStartFailed = "Failed to start recording"
	textRecordingStopFailed  = "Failed to stop recording"
	textPermissionDenied     = "Microphone permission denied"
	textCouldNotTranslate    = "Could not translate"
	textNoTranslation        = "No translation, try again."
	textFileDeleted          = "File deleted"
	textCouldNotDeleteFile   = "Could not delete file"
	textCouldNotSave         = "Could not save message"
	textBusy                 = "Please wait for the current translation to finish"
)
