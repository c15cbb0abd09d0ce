package task

type SpeciesTask struct {
	ID   int    `json:"id"`   // Catalog id derived from URL
	Name string `json:"name"` // Catalog name
	URL  string `json:"url"`  // Resource URL from the catalog response
}

func (t *SpeciesTask) TaskType() string {
	return SpeciesTaskType
}

func (t *SpeciesTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
