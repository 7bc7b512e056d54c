package openioc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercercher/openioc-db/pkg/document"
)

func TestExtractIdentity(t *testing.T) {
	tests := []struct {
		name              string
		attrs             []document.Attr
		expectedID        string
		expectedTimestamp *time.Time
		wantErr           require.ErrorAssertionFunc
	}{
		{
			name: "id and naive timestamp",
			attrs: []document.Attr{
				{Name: "id", Value: "ea3cab0c-72ad-40cc-abbf-90846fa4afec"},
				{Name: "last-modified", Value: "2013-02-19T09:28:53"},
			},
			expectedID:        "ea3cab0c-72ad-40cc-abbf-90846fa4afec",
			expectedTimestamp: timeRef(time.Date(2013, 2, 19, 9, 28, 53, 0, time.UTC)),
		},
		{
			name: "timestamp with explicit offset",
			attrs: []document.Attr{
				{Name: "last-modified", Value: "2013-02-19T09:28:53+02:00"},
			},
			expectedTimestamp: timeRef(time.Date(2013, 2, 19, 7, 28, 53, 0, time.UTC)),
		},
		{
			name: "id only",
			attrs: []document.Attr{
				{Name: "id", Value: "X"},
			},
			expectedID: "X",
		},
		{
			name: "no attributes",
		},
		{
			name: "malformed timestamp",
			attrs: []document.Attr{
				{Name: "last-modified", Value: "not-a-timestamp"},
			},
			wantErr: require.Error,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wantErr == nil {
				test.wantErr = require.NoError
			}

			identity, err := ExtractIdentity(&document.Element{Name: "ioc", Attrs: test.attrs})
			test.wantErr(t, err)
			if err != nil {
				return
			}

			assert.Equal(t, test.expectedID, identity.ID)
			if test.expectedTimestamp == nil {
				assert.Nil(t, identity.Timestamp)
			} else {
				require.NotNil(t, identity.Timestamp)
				assert.True(t, test.expectedTimestamp.Equal(*identity.Timestamp), "expected %s, got %s", test.expectedTimestamp, identity.Timestamp)
			}
		})
	}
}

func timeRef(t time.Time) *time.Time {
	return &t
}
