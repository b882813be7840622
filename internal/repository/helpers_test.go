package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/datatypes"
)

func jsonTasks(m map[string]model.TaskProgress) datatypes.JSONType[map[string]model.TaskProgress] {
	return datatypes.NewJSONType(m)
}
