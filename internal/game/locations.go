package game

// Locations is the fixed set of secret locations a round can use. Known to
// every player except the outsider.
var Locations = []string{
	"Airport", "Bank", "Beach", "Casino", "Cathedral", "Circus Tent",
	"Corporate Party", "Crusader Army", "Day Spa", "Embassy", "Hospital",
	"Hotel", "Military Base", "Movie Studio", "Museum", "Ocean Liner",
	"Passenger Train", "Pirate Ship", "Polar Station", "Police Station",
	"Restaurant", "School", "Service Station", "Space Station", "Submarine",
	"Supermarket", "Theater", "University", "World War II Squad", "Zoo",
}

// AINames is the pool of gender-neutral display names for AI players.
var AINames = []string{
	"Alex", "Blake", "Casey", "Drew", "Ellis", "Finley", "Gray", "Harper",
	"Indigo", "Jules", "Kai", "Lane", "Morgan", "Nova", "Ocean", "Parker",
	"Quinn", "River", "Sage", "Taylor", "Avery", "Cameron", "Dakota", "Emery",
}
