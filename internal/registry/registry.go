package registry

import (
	"sort"
)

// regionEndpoints фиксированная таблица регионов и их endpoint'ов
// Таблица задается на этапе компиляции и не меняется на протяжении
// жизни процесса; endpoint принадлежит ровно одному региону
var regionEndpoints = map[string][]string{
	"northamerica-northeast": {
		"https://northamerica-northeast1-proxy2-455013.cloudfunctions.net/main",
		"https://northamerica-northeast2-proxy2-455013.cloudfunctions.net/main",
	},
	"southamerica": {
		"https://southamerica-west1-proxy1-454912.cloudfunctions.net/main",
		"https://southamerica-east1-proxy3-455013.cloudfunctions.net/main",
		"https://southamerica-west1-proxy3-455013.cloudfunctions.net/main",
	},
	"us-central": {
		"https://us-central1-proxy1-454912.cloudfunctions.net/main",
		"https://us-central1-proxy2-455013.cloudfunctions.net/main",
		"https://us-south1-proxy3-455013.cloudfunctions.net/main",
	},
	"us-east": {
		"https://us-east1-proxy1-454912.cloudfunctions.net/main",
		"https://us-east4-proxy1-454912.cloudfunctions.net/main",
		"https://us-east5-proxy2-455013.cloudfunctions.net/main",
	},
	"asia": {
		"https://asia-east1-proxy6-455014.cloudfunctions.net/main",
		"https://asia-northeast2-proxy6-455014.cloudfunctions.net/main",
	},
	"us-west": {
		"https://us-west1-proxy1-454912.cloudfunctions.net/main",
		"https://us-west3-proxy1-454912.cloudfunctions.net/main",
		"https://us-west4-proxy1-454912.cloudfunctions.net/main",
		"https://us-west2-proxy2-455013.cloudfunctions.net/main",
	},
	"europe": {
		"https://europe-north1-proxy4-455014.cloudfunctions.net/main",
		"https://europe-southwest1-proxy4-455014.cloudfunctions.net/main",
		"https://europe-west1-proxy4-455014.cloudfunctions.net/main",
		"https://europe-west4-proxy4-455014.cloudfunctions.net/main",
		"https://europe-west6-proxy4-455014.cloudfunctions.net/main",
		"https://europe-west8-proxy4-455014.cloudfunctions.net/main",
		"https://europe-west12-proxy5-455014.cloudfunctions.net/main",
		"https://europe-west2-proxy5-455014.cloudfunctions.net/main",
		"https://europe-west3-proxy5-455014.cloudfunctions.net/main",
		"https://europe-west6-proxy5-455014.cloudfunctions.net/main",
		"https://europe-west9-proxy5-455014.cloudfunctions.net/main",
		"https://europe-west10-proxy6-455014.cloudfunctions.net/main",
	},
	"middle-east": {
		"https://me-central1-proxy6-455014.cloudfunctions.net/main",
	},
	"australia": {
		"https://australia-southeast1-proxy3-455013.cloudfunctions.net/main",
		"https://australia-southeast2-proxy3-455013.cloudfunctions.net/main",
	},
}

// Registry представляет неизменяемый реестр регионов
type Registry struct {
	regions map[string][]string
}

// New создает реестр со встроенной таблицей регионов
func New() *Registry {
	return &Registry{regions: regionEndpoints}
}

// NewWithRegions создает реестр с заданной таблицей (для тестов)
func NewWithRegions(regions map[string][]string) *Registry {
	return &Registry{regions: regions}
}

// Has проверяет, известен ли регион
func (r *Registry) Has(region string) bool {
	_, ok := r.regions[region]
	return ok
}

// Endpoints возвращает endpoint'ы региона в исходном порядке
// Возвращается копия, реестр не может быть изменен через результат
func (r *Registry) Endpoints(region string) ([]string, bool) {
	endpoints, ok := r.regions[region]
	if !ok {
		return nil, false
	}

	result := make([]string, len(endpoints))
	copy(result, endpoints)
	return result, true
}

// Regions возвращает отсортированный список известных регионов
func (r *Registry) Regions() []string {
	regions := make([]string, 0, len(r.regions))
	for region := range r.regions {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
