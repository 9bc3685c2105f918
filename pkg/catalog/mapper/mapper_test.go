package mapper

import (
	"testing"

	"pazuzu-registry/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureToResponse(t *testing.T) {
	desc := "python runtime"
	f := &entity.Feature{
		Id:           uuid.New(),
		Name:         "python",
		DockerData:   "RUN apt-get install python3",
		Description:  &desc,
		Dependencies: []entity.FeatureRef{{Id: uuid.New(), Name: "base"}},
		Tags:         []*entity.Tag{{Id: uuid.New(), Name: "lang", Value: "python"}},
	}

	res := FeatureToResponse(f)
	require.NotNil(t, res)
	assert.Equal(t, f.Id, res.Id)
	assert.Equal(t, []string{"base"}, res.Dependencies)
	assert.Equal(t, "python runtime", *res.Description)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "lang", res.Tags[0].Name)

	assert.Nil(t, FeatureToResponse(nil))
}

func TestFeaturesToResponse_NeverNil(t *testing.T) {
	res := FeaturesToResponse(nil)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	bare := FeatureToResponse(&entity.Feature{Name: "bare"})
	assert.NotNil(t, bare.Dependencies)
	assert.NotNil(t, bare.Tags)
}
