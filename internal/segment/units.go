package segment

// DefaultUnits is the closed set of unit-of-measure tokens used as the
// structural pivot of an item row.
var DefaultUnits = []string{
	"UN", "UND", "UNID", "CX", "PC", "PCT", "FR", "FRS", "FA",
	"KG", "G", "ML", "L", "LT", "AMP", "CP", "CPR", "TB",
	"BL", "RL", "GL", "PAR", "KIT", "SC", "ENV", "BS",
}
