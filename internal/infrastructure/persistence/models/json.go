package models

import (
	"database/sql/driver"
	"encoding/json"
)

// jsonValue encodes a value the same way gorm's json serializer does.
// Map based updates skip field serializers, so JSON columns are wrapped explicitly.
type jsonValue struct {
	v any
}

// Value implements driver.Valuer
func (j jsonValue) Value() (driver.Value, error) {
	b, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonColumn(v any) driver.Valuer {
	return jsonValue{v: v}
}
