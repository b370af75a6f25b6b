package domain

type CheckInStatus string

const (
	CheckInUnknown      CheckInStatus = "Unknown"
	CheckInNotCheckedIn CheckInStatus = "Not checked in"
	CheckInAlreadyToday CheckInStatus = "Already checked in today"
	CheckInSuccessful   CheckInStatus = "Check-in successful"
	CheckInFailed       CheckInStatus = "Check-in failed"
	CheckInError        CheckInStatus = "Error"
	CheckInNotAvailable CheckInStatus = "Not available"
)

// Done reports whether the account holds a check-in for today after the pass.
func (s CheckInStatus) Done() bool {
	return s == CheckInSuccessful || s == CheckInAlreadyToday
}
