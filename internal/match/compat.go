package match

import "github.com/shelfmark/shelfmark-server/internal/domain"

// kindCompatibility is the static table of which destination property
// kinds may legally hold each semantic value kind. Used only as a
// filter, never to rank candidates.
var kindCompatibility = map[domain.ValueKind][]domain.PropertyKind{
	domain.ValueTitle:       {domain.KindTitle},
	domain.ValueRichText:    {domain.KindRichText, domain.KindTitle},
	domain.ValueMultiSelect: {domain.KindMultiSelect, domain.KindSelect, domain.KindRichText},
	domain.ValueSelect:      {domain.KindSelect, domain.KindMultiSelect, domain.KindRichText},
	domain.ValueNumber:      {domain.KindNumber, domain.KindRichText},
	domain.ValueDate:        {domain.KindDate, domain.KindRichText},
	domain.ValueURL:         {domain.KindURL, domain.KindRichText},
	domain.ValueFiles:       {domain.KindFiles, domain.KindURL, domain.KindRichText},
	domain.ValueCheckbox:    {domain.KindCheckbox},
}

// Compatible reports whether a property of the given kind may hold a
// value of the given kind.
func Compatible(value domain.ValueKind, property domain.PropertyKind) bool {
	for _, k := range kindCompatibility[value] {
		if k == property {
			return true
		}
	}
	return false
}

// kindMatches reports whether a value kind names the same shape as a
// property kind, for the mapper's exact-kind bonus.
func kindMatches(value domain.ValueKind, property domain.PropertyKind) bool {
	switch value {
	case domain.ValueTitle:
		return property == domain.KindTitle
	case domain.ValueRichText:
		return property == domain.KindRichText
	case domain.ValueMultiSelect:
		return property == domain.KindMultiSelect
	case domain.ValueSelect:
		return property == domain.KindSelect
	case domain.ValueNumber:
		return property == domain.KindNumber
	case domain.ValueDate:
		return property == domain.KindDate
	case domain.ValueURL:
		return property == domain.KindURL
	case domain.ValueFiles:
		return property == domain.KindFiles
	case domain.ValueCheckbox:
		return property == domain.KindCheckbox
	}
	return false
}
