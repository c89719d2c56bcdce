package diagram

import "strings"

// ColumnType is the closed enumeration of column kinds.
type ColumnType string

// Column types.
const (
	TypeAddress         ColumnType = "Address"
	TypeApp             ColumnType = "App"
	TypeChangeCounter   ColumnType = "ChangeCounter"
	TypeChangeLocation  ColumnType = "ChangeLocation"
	TypeChangeTimestamp ColumnType = "ChangeTimestamp"
	TypeColor           ColumnType = "Color"
	TypeDate            ColumnType = "Date"
	TypeDateTime        ColumnType = "DateTime"
	TypeDecimal         ColumnType = "Decimal"
	TypeDrawing         ColumnType = "Drawing"
	TypeDuration        ColumnType = "Duration"
	TypeEmail           ColumnType = "Email"
	TypeEnum            ColumnType = "Enum"
	TypeEnumList        ColumnType = "EnumList"
	TypeFile            ColumnType = "File"
	TypeImage           ColumnType = "Image"
	TypeLatLong         ColumnType = "LatLong"
	TypeLongText        ColumnType = "LongText"
	TypeName            ColumnType = "Name"
	TypeNumber          ColumnType = "Number"
	TypePercent         ColumnType = "Percent"
	TypePhone           ColumnType = "Phone"
	TypePrice           ColumnType = "Price"
	TypeProgress        ColumnType = "Progress"
	TypeRef             ColumnType = "Ref"
	TypeShow            ColumnType = "Show"
	TypeSignature       ColumnType = "Signature"
	TypeText            ColumnType = "Text"
	TypeThumbnail       ColumnType = "Thumbnail"
	TypeTime            ColumnType = "Time"
	TypeURL             ColumnType = "Url"
	TypeVideo           ColumnType = "Video"
	TypeXY              ColumnType = "XY"
	TypeYesNo           ColumnType = "Yes/No"

	// TypeUniqueID is a legacy type kept so older diagrams still load.
	TypeUniqueID ColumnType = "UniqueID"
)

var columnTypes = []ColumnType{
	TypeAddress, TypeApp, TypeChangeCounter, TypeChangeLocation, TypeChangeTimestamp,
	TypeColor, TypeDate, TypeDateTime, TypeDecimal, TypeDrawing, TypeDuration,
	TypeEmail, TypeEnum, TypeEnumList, TypeFile, TypeImage, TypeLatLong,
	TypeLongText, TypeName, TypeNumber, TypePercent, TypePhone, TypePrice,
	TypeProgress, TypeRef, TypeShow, TypeSignature, TypeText, TypeThumbnail,
	TypeTime, TypeURL, TypeVideo, TypeXY, TypeYesNo, TypeUniqueID,
}

// typeByToken maps lower-cased tokens to types, plus the yesno alias.
var typeByToken = func() map[string]ColumnType {
	m := make(map[string]ColumnType, len(columnTypes)+1)
	for _, t := range columnTypes {
		m[strings.ToLower(string(t))] = t
	}
	m["yesno"] = TypeYesNo
	return m
}()

// ColumnTypes returns every known column type.
func ColumnTypes() []ColumnType {
	out := make([]ColumnType, len(columnTypes))
	copy(out, columnTypes)
	return out
}

// ParseColumnType resolves a type token case-insensitively.
func ParseColumnType(token string) (ColumnType, bool) {
	t, ok := typeByToken[strings.ToLower(strings.TrimSpace(token))]
	return t, ok
}

// Valid reports whether t is an exact member of the enumeration.
func (t ColumnType) Valid() bool {
	for _, ct := range columnTypes {
		if ct == t {
			return true
		}
	}
	return false
}
