package job

// Status is the tracked stage of an application. The progression
// Identified -> ... -> Closed is a convention only: any status may follow
// any other, so nothing here enforces transition legality.
type Status string

const (
	StatusIdentified       Status = "Identified"
	StatusPreparing        Status = "Preparing Application"
	StatusApplied          Status = "Applied"
	StatusInterviewOffered Status = "Interview Offered"
	StatusOfferReceived    Status = "Offer Received"
	StatusUnsuccessful     Status = "Unsuccessful"
	StatusClosed           Status = "Closed"
	StatusOfferDeclined    Status = "Offer Declined"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{
		StatusIdentified,
		StatusPreparing,
		StatusApplied,
		StatusInterviewOffered,
		StatusOfferReceived,
		StatusUnsuccessful,
		StatusClosed,
		StatusOfferDeclined,
	}
}

// ClosedSet holds the terminal statuses. Jobs in this set are excluded from
// active metrics and never qualify for reminders, whatever their dates say.
var ClosedSet = map[Status]bool{
	StatusUnsuccessful:  true,
	StatusClosed:        true,
	StatusOfferDeclined: true,
}

// IsClosed reports whether s is a terminal status.
func (s Status) IsClosed() bool {
	return ClosedSet[s]
}

// ApplicationType distinguishes how the application was lodged.
type ApplicationType string

const (
	TypeStatewideCampaign ApplicationType = "Statewide Campaign"
	TypeDirectHospital    ApplicationType = "Direct Hospital"
	TypeProactiveEOI      ApplicationType = "Proactive EOI"
)

// ApplicationTypes lists the recognized application types.
func ApplicationTypes() []ApplicationType {
	return []ApplicationType{TypeStatewideCampaign, TypeDirectHospital, TypeProactiveEOI}
}

// RoleLevel is the seniority of the advertised role.
type RoleLevel string

const (
	RoleIntern    RoleLevel = "Intern"
	RoleRMO       RoleLevel = "RMO"
	RoleSRMO      RoleLevel = "SRMO"
	RoleRegistrar RoleLevel = "Registrar"
	RoleTrainee   RoleLevel = "Trainee"
)

// RoleLevels lists the recognized role levels.
func RoleLevels() []RoleLevel {
	return []RoleLevel{RoleIntern, RoleRMO, RoleSRMO, RoleRegistrar, RoleTrainee}
}

// States lists the state/region codes offered by the dashboard filter.
func States() []string {
	return []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "NT", "ACT"}
}
