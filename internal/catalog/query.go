package catalog

import "strings"

// QueryPrefix is the literal first segment of every device query string.
const QueryPrefix = "speculos"

// Query is a parsed device request:
// speculos:[<model>[@<firmware>]:]<appOrCurrency>[@<versionRange>]
type Query struct {
	Search AppSearch
	// AppName duplicates Search.AppName for convenience; it is the
	// canonical manager app name after currency-keyword substitution.
	AppName string
	// Dependency names a companion app that must be loaded alongside the
	// target, or "" when none is required.
	Dependency string
}

// currencyApp maps a currency keyword to its manager application and the
// companion apps that application expects on the device. Fork apps rely on
// their base app's crypto, so e.g. Zcash loads next to Bitcoin.
type currencyApp struct {
	ManagerApp   string
	Dependencies []string
}

var currencies = map[string]currencyApp{
	"bitcoin_cash":     {ManagerApp: "Bitcoin Cash", Dependencies: []string{"Bitcoin"}},
	"bitcoin_gold":     {ManagerApp: "Bitcoin Gold", Dependencies: []string{"Bitcoin"}},
	"digibyte":         {ManagerApp: "Digibyte", Dependencies: []string{"Bitcoin"}},
	"komodo":           {ManagerApp: "Komodo", Dependencies: []string{"Bitcoin"}},
	"zcash":            {ManagerApp: "Zcash", Dependencies: []string{"Bitcoin"}},
	"ethereum_classic": {ManagerApp: "Ethereum Classic", Dependencies: []string{"Ethereum"}},
}

// ParseQuery parses a device query string. The second return is false when
// the string does not carry the query prefix or names no application.
func ParseQuery(query string) (Query, bool) {
	segments := strings.Split(query, ":")
	if len(segments) < 2 || segments[0] != QueryPrefix {
		return Query{}, false
	}
	segments = segments[1:]

	var q Query
	if model, firmware, ok := deviceSegment(segments[0]); ok {
		q.Search.Model = model
		q.Search.Firmware = firmware
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return Query{}, false
	}

	token, versionRange := splitAt(segments[0])
	if cur, ok := currencies[strings.ToLower(token)]; ok {
		q.AppName = cur.ManagerApp
		if len(cur.Dependencies) > 0 {
			q.Dependency = cur.Dependencies[0]
		}
	} else {
		q.AppName = token
	}
	q.Search.AppName = q.AppName
	q.Search.AppVersion = versionRange
	return q, true
}

// deviceSegment interprets a segment as <model> or <model>@<firmware>.
func deviceSegment(seg string) (model, firmware string, ok bool) {
	token, firmware := splitAt(seg)
	model, ok = CanonicalModel(token)
	if !ok {
		return "", "", false
	}
	return model, firmware, true
}

func splitAt(seg string) (string, string) {
	if i := strings.Index(seg, "@"); i >= 0 {
		return seg[:i], seg[i+1:]
	}
	return seg, ""
}
