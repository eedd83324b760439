package session

import (
	"sync"
	"testing"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobAssets() types.JobAssets {
	return types.JobAssets{
		JobDescription:     testutil.JobDescription(),
		InterviewQuestions: testutil.Questions(testutil.Distribution()),
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Snapshot().Empty())
	assert.Empty(t, s.ContextSummary())

	epoch := s.Reset()
	require.NoError(t, s.SetJobAssets(epoch, jobAssets()))
	require.NoError(t, s.AddProfiles(epoch, testutil.Profiles()))
	require.NoError(t, s.AddAdvanced(epoch, testutil.AdvancedAssets()))

	snap := s.Snapshot()
	require.NotNil(t, snap.JobDescription)
	assert.Len(t, snap.InterviewQuestions, 21)
	assert.Len(t, snap.CandidateProfiles, 3)
	require.NotNil(t, snap.AdvancedAssets)

	jd := testutil.JobDescription()
	assert.Equal(t, "Current Job Title: "+jd.Title+"\nSummary: "+jd.Summary+"\n", s.ContextSummary())

	s.Reset()
	assert.True(t, s.Snapshot().Empty(), "base generation clears every artifact")
}

func TestStoreSubArtifactsNeedJobDescription(t *testing.T) {
	s := NewStore()
	epoch := s.Epoch()

	err := s.AddProfiles(epoch, testutil.Profiles())
	assert.Equal(t, appErrors.ErrorTypePrecondition, appErrors.TypeOf(err))

	err = s.AddAdvanced(epoch, testutil.AdvancedAssets())
	assert.Equal(t, appErrors.ErrorTypePrecondition, appErrors.TypeOf(err))

	err = s.UpdateJobDescription(testutil.JobDescription())
	assert.Equal(t, appErrors.ErrorTypePrecondition, appErrors.TypeOf(err))

	assert.True(t, s.Snapshot().Empty())
}

func TestStoreSubArtifactsDoNotClearOthers(t *testing.T) {
	s := NewStore()
	epoch := s.Reset()
	require.NoError(t, s.SetJobAssets(epoch, jobAssets()))
	require.NoError(t, s.AddAdvanced(epoch, testutil.AdvancedAssets()))
	require.NoError(t, s.AddProfiles(epoch, testutil.Profiles()))

	snap := s.Snapshot()
	assert.NotNil(t, snap.AdvancedAssets)
	assert.Len(t, snap.InterviewQuestions, 21)
}

func TestStoreRefusesStaleResults(t *testing.T) {
	s := NewStore()
	old := s.Reset()
	require.NoError(t, s.SetJobAssets(old, jobAssets()))

	current := s.Reset()
	require.NoError(t, s.SetJobAssets(current, jobAssets()))

	err := s.AddProfiles(old, testutil.Profiles())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStaleResult))
	assert.Nil(t, s.Snapshot().CandidateProfiles)

	err = s.SetJobAssets(old, jobAssets())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStaleResult))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	epoch := s.Reset()
	require.NoError(t, s.SetJobAssets(epoch, jobAssets()))

	snap := s.Snapshot()
	snap.JobDescription.Title = "changed"
	snap.JobDescription.HardSkills[0] = "changed"
	snap.InterviewQuestions[0].Question = "changed"

	again := s.Snapshot()
	assert.Equal(t, testutil.JobDescription().Title, again.JobDescription.Title)
	assert.Equal(t, testutil.JobDescription().HardSkills[0], again.JobDescription.HardSkills[0])
	assert.NotEqual(t, "changed", again.InterviewQuestions[0].Question)
}

func TestStoreUpdateJobDescription(t *testing.T) {
	s := NewStore()
	epoch := s.Reset()
	require.NoError(t, s.SetJobAssets(epoch, jobAssets()))
	require.NoError(t, s.AddProfiles(epoch, testutil.Profiles()))

	jd := testutil.JobDescription()
	jd.Responsibilities = types.SplitLines("Lead the team\n\n Ship weekly ")
	require.NoError(t, s.UpdateJobDescription(jd))

	snap := s.Snapshot()
	assert.Equal(t, []string{"Lead the team", "Ship weekly"}, snap.JobDescription.Responsibilities)
	assert.Len(t, snap.CandidateProfiles, 3)
	assert.Equal(t, epoch, s.Epoch(), "an edit is not a new generation")
}

func TestStoreBegin(t *testing.T) {
	s := NewStore()

	release, err := s.Begin(types.TaskJobAssets)
	require.NoError(t, err)
	assert.True(t, s.InFlight(types.TaskJobAssets))

	_, err = s.Begin(types.TaskJobAssets)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTaskInFlight))

	// Other kinds are independent
	releaseProfiles, err := s.Begin(types.TaskCandidateProfiles)
	require.NoError(t, err)
	assert.Equal(t, []types.Task{types.TaskJobAssets, types.TaskCandidateProfiles}, s.Running())

	release()
	release()
	releaseProfiles()
	assert.False(t, s.InFlight(types.TaskJobAssets))
	assert.Empty(t, s.Running())

	release, err = s.Begin(types.TaskJobAssets)
	require.NoError(t, err)
	release()
}

func TestStoreBeginIsSingleFlight(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var releases []func()
	conflicts := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.Begin(types.TaskAdvancedAssets)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				conflicts++
				return
			}
			releases = append(releases, release)
		}()
	}
	wg.Wait()

	assert.Len(t, releases, 1)
	assert.Equal(t, 19, conflicts)
}

func TestStoreRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *Store)
	}{
		{"empty", func(*Store) {}},
		{"job assets", func(s *Store) {
			require.NoError(t, s.SetJobAssets(s.Reset(), jobAssets()))
		}},
		{"everything", func(s *Store) {
			epoch := s.Reset()
			require.NoError(t, s.SetJobAssets(epoch, jobAssets()))
			require.NoError(t, s.AddProfiles(epoch, testutil.Profiles()))
			require.NoError(t, s.AddAdvanced(epoch, testutil.AdvancedAssets()))
		}},
		{"empty profile list", func(s *Store) {
			epoch := s.Reset()
			require.NoError(t, s.SetJobAssets(epoch, jobAssets()))
			require.NoError(t, s.AddProfiles(epoch, []types.CandidateProfile{}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewStore()
			tt.build(src)
			data, err := src.MarshalJSON()
			require.NoError(t, err)

			dst := NewStore()
			before := dst.Epoch()
			require.NoError(t, dst.Restore(data))
			assert.Equal(t, src.Snapshot(), dst.Snapshot())
			assert.Equal(t, src.Snapshot().CandidateProfiles == nil, dst.Snapshot().CandidateProfiles == nil)
			assert.Greater(t, dst.Epoch(), before)
		})
	}
}

func TestStoreRestoreRejectsBadInput(t *testing.T) {
	s := NewStore()

	err := s.Restore([]byte("{"))
	assert.Equal(t, appErrors.ErrorTypeParse, appErrors.TypeOf(err))

	err = s.Restore([]byte(`{"candidateProfiles": []}`))
	assert.Equal(t, appErrors.ErrorTypeValidation, appErrors.TypeOf(err))
}
