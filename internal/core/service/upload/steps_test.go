package upload_test

import (
	"context"
	"geo-upload/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadService_SRS_SkippedWhenCRSKnown(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cfg := defaultCfg
	cfg.AllowTimeStep = true
	f := newFixture(t, cfg)
	f.acceptLedgerWrites()
	f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSave)

	f.importer.On("JobState", ctx, testJob).Return(domain.JobStatus{State: domain.JobStateReady}, nil)

	// Act
	resp := f.service.HandleStep(ctx, read(domain.StepSRS))

	// Assert
	require.Equal(t, domain.ResponseRedirect, resp.Kind)
	assert.Nil(t, resp.Form)
	assert.Equal(t, domain.StepTime, resp.Step)
	assert.Equal(t, domain.StepSRS, f.stored(t).CompletedStep)
	f.importer.AssertNotCalled(t, "ApplySRS", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_SRS_PromptsWhenCRSMissing(t *testing.T) {
	ctx := context.Background()

	t.Run("read renders the form", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)

		f.importer.On("JobState", ctx, testJob).Return(domain.JobStatus{State: domain.JobStateIncomplete, Reason: domain.IncompleteReasonNoCRS}, nil)
		f.importer.On("Describe", ctx, testJob).Return(&domain.ImportItem{ResourceType: domain.ResourceTypeFeatureType, NativeCRS: "LOCAL_CS[unknown]"}, nil)

		// Act
		resp := f.service.HandleStep(ctx, read(domain.StepSRS))

		// Assert
		require.Equal(t, domain.ResponseForm, resp.Kind)
		assert.Equal(t, domain.StepSRS, resp.Step)
		require.NotNil(t, resp.Form.SRS)
		assert.Equal(t, "LOCAL_CS[unknown]", resp.Form.SRS.NativeCRS)
		// reading a step rewinds to the step before it
		assert.Equal(t, domain.StepSave, f.stored(t).CompletedStep)
	})

	t.Run("invalid code re-renders with errors", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSave)

		f.importer.On("JobState", ctx, testJob).Return(domain.JobStatus{State: domain.JobStateIncomplete, Reason: domain.IncompleteReasonNoCRS}, nil)
		f.importer.On("Describe", ctx, testJob).Return(&domain.ImportItem{ResourceType: domain.ResourceTypeFeatureType}, nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepSRS, map[string]string{"srs": "mercator"}))

		// Assert
		require.Equal(t, domain.ResponseForm, resp.Kind)
		assert.Equal(t, []string{"srs: Enter an EPSG code such as EPSG:4326."}, resp.Form.Errors)
		assert.Equal(t, "mercator", resp.Form.SRS.Selected)
		f.importer.AssertNotCalled(t, "ApplySRS", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid code is applied", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSave)

		f.importer.On("JobState", ctx, testJob).Return(domain.JobStatus{State: domain.JobStateIncomplete, Reason: domain.IncompleteReasonNoCRS}, nil)
		f.importer.On("ApplySRS", ctx, testJob, "EPSG:32633").Return(nil)
		f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepSRS, map[string]string{"srs": "epsg:32633"}))

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		assert.Equal(t, domain.StepFinal, resp.Step)
		session := f.stored(t)
		assert.Equal(t, "EPSG:32633", session.Options.SRS)
		assert.Equal(t, domain.StepRun, session.CompletedStep)
		assert.True(t, session.ImportRun)
	})

	t.Run("rejected code keeps the session", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSave)

		f.importer.On("JobState", ctx, testJob).Return(domain.JobStatus{State: domain.JobStateIncomplete, Reason: domain.IncompleteReasonNoCRS}, nil)
		f.importer.On("ApplySRS", ctx, testJob, "EPSG:99999").Return(&domain.ImportConfigError{Op: "srs", Message: "Unknown CRS EPSG:99999"})

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepSRS, map[string]string{"srs": "99999"}))

		// Assert
		require.Equal(t, domain.ResponseError, resp.Kind)
		assert.Equal(t, domain.FailureImport, resp.Failure)
		assert.Equal(t, []string{"Unknown CRS EPSG:99999"}, resp.Errors)
		assert.Equal(t, domain.StepSave, f.stored(t).CompletedStep)
		f.staging.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestUploadService_CSV_GuessesColumns(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, defaultCfg)
	f.acceptLedgerWrites()
	f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)

	f.importer.On("Describe", ctx, testJob).Return(csvItem(
		domain.Attribute{Name: "lat", Binding: domain.BindingDouble},
		domain.Attribute{Name: "lon", Binding: domain.BindingDouble},
		domain.Attribute{Name: "thing", Binding: domain.BindingString},
	), nil)

	// Act
	resp := f.service.HandleStep(ctx, read(domain.StepCSV))

	// Assert
	require.Equal(t, domain.ResponseForm, resp.Kind)
	require.NotNil(t, resp.Form.CSV)
	assert.Equal(t, "lat", resp.Form.CSV.SelectedLat)
	assert.Equal(t, "lon", resp.Form.CSV.SelectedLng)
	assert.True(t, resp.Form.CSV.GuessedLatOrLng)
	assert.True(t, resp.Form.CSV.PresentChoices)
	assert.Equal(t, []string{"lat", "lon"}, resp.Form.CSV.PointCandidates)
}

func TestUploadService_CSV_GuessIgnoresNonNumericColumns(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, defaultCfg)
	f.acceptLedgerWrites()
	f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)

	f.importer.On("Describe", ctx, testJob).Return(csvItem(
		domain.Attribute{Name: "lat", Binding: domain.BindingString},
		domain.Attribute{Name: "x", Binding: domain.BindingDouble},
		domain.Attribute{Name: "y", Binding: domain.BindingDouble},
	), nil)

	// Act
	resp := f.service.HandleStep(ctx, read(domain.StepCSV))

	// Assert
	require.Equal(t, domain.ResponseForm, resp.Kind)
	require.NotNil(t, resp.Form.CSV)
	assert.Equal(t, []string{"x", "y"}, resp.Form.CSV.PointCandidates)
	assert.Empty(t, resp.Form.CSV.SelectedLat)
	assert.Empty(t, resp.Form.CSV.SelectedLng)
	assert.False(t, resp.Form.CSV.GuessedLatOrLng)
}

func TestUploadService_FormAsyncFlag(t *testing.T) {
	ctx := context.Background()
	points := csvItem(
		domain.Attribute{Name: "lat", Binding: domain.BindingDouble},
		domain.Attribute{Name: "lon", Binding: domain.BindingDouble},
	)

	tests := []struct {
		name        string
		asyncImport bool
		timeStep    bool
		expected    bool
	}{
		{"run follows csv", true, false, true},
		{"time follows csv", true, true, false},
		{"async disabled", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := defaultCfg
			cfg.AsyncImport = tt.asyncImport
			cfg.AllowTimeStep = tt.timeStep
			f := newFixture(t, cfg)
			f.acceptLedgerWrites()
			f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)
			f.importer.On("Describe", ctx, testJob).Return(points, nil)

			// Act
			resp := f.service.HandleStep(ctx, read(domain.StepCSV))

			// Assert
			require.Equal(t, domain.ResponseForm, resp.Kind, resp.Errors)
			assert.Equal(t, tt.expected, resp.Form.AsyncUpload)
		})
	}
}

func TestUploadService_CSV_Submission(t *testing.T) {
	ctx := context.Background()
	attrs := []domain.Attribute{
		{Name: "lat", Binding: domain.BindingDouble},
		{Name: "lon", Binding: domain.BindingDouble},
		{Name: "count", Binding: domain.BindingInteger},
		{Name: "thing", Binding: domain.BindingString},
	}

	tests := []struct {
		name     string
		lat, lng string
		message  string
	}{
		{"same column", "lat", "lat", "Cannot choose same column for latitude and longitude"},
		{"same non candidate column", "thing", "thing", "Cannot choose same column for latitude and longitude"},
		{"missing latitude", "", "lon", "Missing latitude/longitude fields"},
		{"missing longitude", "lat", "", "Missing latitude/longitude fields"},
		{"not numeric", "lat", "thing", "Invalid latitude/longitude fields"},
		{"unknown column", "lat", "elevation", "Invalid latitude/longitude fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, defaultCfg)
			f.acceptLedgerWrites()
			f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)
			f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)

			// Act
			resp := f.service.HandleStep(ctx, write(domain.StepCSV, map[string]string{"lat": tt.lat, "lng": tt.lng}))

			// Assert
			require.Equal(t, domain.ResponseForm, resp.Kind)
			assert.Equal(t, []string{tt.message}, resp.Form.Errors)
			assert.False(t, resp.Form.CSV.GuessedLatOrLng)
			assert.Equal(t, tt.lat, resp.Form.CSV.SelectedLat)
			f.importer.AssertNotCalled(t, "ApplyGeometryFromColumns", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("valid columns", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)
		f.importer.On("ApplyGeometryFromColumns", ctx, testJob, "lat", "lon").Return(nil)
		f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepCSV, map[string]string{"lat": "lat", "lng": "lon"}))

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		assert.Equal(t, domain.StepFinal, resp.Step)
		session := f.stored(t)
		assert.Equal(t, "lat", session.Options.LatField)
		assert.Equal(t, "lon", session.Options.LngField)
		f.importer.AssertExpectations(t)
	})
}

func TestUploadService_CSV_SkippedWhenPointColumnExists(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cfg := defaultCfg
	cfg.AllowTimeStep = true
	f := newFixture(t, cfg)
	f.acceptLedgerWrites()
	f.seed(t, domain.UploadTypeCSV, domain.ResourceTypeFeatureType, domain.StepSave)

	f.importer.On("Describe", ctx, testJob).Return(csvItem(
		domain.Attribute{Name: "the_geom", Binding: domain.BindingPoint},
		domain.Attribute{Name: "name", Binding: domain.BindingString},
	), nil)

	// Act
	resp := f.service.HandleStep(ctx, read(domain.StepCSV))

	// Assert
	require.Equal(t, domain.ResponseRedirect, resp.Kind)
	assert.Equal(t, domain.StepTime, resp.Step)
	assert.Equal(t, domain.StepCSV, f.stored(t).CompletedStep)
}

func TestUploadService_Time(t *testing.T) {
	ctx := context.Background()
	cfg := defaultCfg
	cfg.AllowTimeStep = true
	attrs := []domain.Attribute{
		{Name: "observed", Binding: domain.BindingDate},
		{Name: "stamp", Binding: domain.BindingString},
		{Name: "year", Binding: domain.BindingInteger},
	}

	t.Run("read partitions attributes", func(t *testing.T) {
		// Arrange
		f := newFixture(t, cfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)

		// Act
		resp := f.service.HandleStep(ctx, read(domain.StepTime))

		// Assert
		require.Equal(t, domain.ResponseForm, resp.Kind)
		assert.Equal(t, []string{"observed"}, resp.Form.Time.TimeNames)
		assert.Equal(t, []string{"stamp"}, resp.Form.Time.TextNames)
		assert.Equal(t, []string{"year"}, resp.Form.Time.YearNames)
		assert.Equal(t, domain.StepSRS, f.stored(t).CompletedStep)
	})

	t.Run("attributes with spaces are an error", func(t *testing.T) {
		// Arrange
		f := newFixture(t, cfg)
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(
			domain.Attribute{Name: "start date", Binding: domain.BindingDate},
			domain.Attribute{Name: "end date", Binding: domain.BindingDate},
		), nil)

		// Act
		resp := f.service.HandleStep(ctx, read(domain.StepTime))

		// Assert
		require.Equal(t, domain.ResponseError, resp.Kind)
		assert.Equal(t, domain.FailureValidation, resp.Failure)
		assert.Equal(t, []string{"Attributes with spaces are not supported : start date,end date"}, resp.Errors)
	})

	t.Run("text attribute with end year", func(t *testing.T) {
		// Arrange
		f := newFixture(t, cfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)
		want := domain.TimeConfig{
			Start:          domain.TimeAttribute{Name: "stamp", Transform: domain.TimeTransformDateFormat, Format: "yyyy-MM-dd"},
			End:            &domain.TimeAttribute{Name: "year", Transform: domain.TimeTransformYear},
			Presentation:   "DISCRETE_INTERVAL",
			PrecisionValue: 1,
			PrecisionStep:  "years",
		}
		f.importer.On("ApplyTimeConfig", ctx, testJob, want).Return(nil)
		f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepTime, map[string]string{
			"text_attribute":        "stamp",
			"text_attribute_format": "yyyy-MM-dd",
			"end_year_attribute":    "year",
			"presentation_strategy": "DISCRETE_INTERVAL",
			"precision_value":       "1",
			"precision_step":        "years",
		}))

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		assert.Equal(t, domain.StepFinal, resp.Step)
		require.NotNil(t, f.stored(t).Options.Time)
		f.importer.AssertExpectations(t)
	})

	t.Run("date attribute defaults to list presentation", func(t *testing.T) {
		// Arrange
		f := newFixture(t, cfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)
		f.importer.On("ApplyTimeConfig", ctx, testJob, domain.TimeConfig{
			Start:        domain.TimeAttribute{Name: "observed"},
			Presentation: "LIST",
		}).Return(nil)
		f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepTime, map[string]string{"time_attribute": "observed"}))

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		f.importer.AssertExpectations(t)
	})

	t.Run("no attribute chosen skips the configuration", func(t *testing.T) {
		// Arrange
		f := newFixture(t, cfg)
		f.acceptLedgerWrites()
		f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
		f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)
		f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, write(domain.StepTime, map[string]string{}))

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		f.importer.AssertNotCalled(t, "ApplyTimeConfig", mock.Anything, mock.Anything, mock.Anything)
		assert.Nil(t, f.stored(t).Options.Time)
	})

	t.Run("invalid submission", func(t *testing.T) {
		forms := map[string]map[string]string{
			"attribute of the wrong type": {"time_attribute": "stamp"},
			"unknown presentation":        {"time_attribute": "observed", "presentation_strategy": "SPIRAL"},
			"non numeric precision":       {"time_attribute": "observed", "precision_value": "often"},
		}
		for name, form := range forms {
			t.Run(name, func(t *testing.T) {
				// Arrange
				f := newFixture(t, cfg)
				f.seed(t, domain.UploadTypeShapefile, domain.ResourceTypeFeatureType, domain.StepSRS)
				f.importer.On("Describe", ctx, testJob).Return(csvItem(attrs...), nil)

				// Act
				resp := f.service.HandleStep(ctx, write(domain.StepTime, form))

				// Assert
				require.Equal(t, domain.ResponseError, resp.Kind)
				assert.Equal(t, domain.FailureValidation, resp.Failure)
				assert.Equal(t, "Invalid Submission", resp.Errors[0])
				f.importer.AssertNotCalled(t, "ApplyTimeConfig", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}

func TestUploadService_RasterBypassesTime(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cfg := defaultCfg
	cfg.AllowTimeStep = true
	f := newFixture(t, cfg)
	f.acceptLedgerWrites()

	f.staging.On("Stage", ctx, mock.Anything, mock.Anything, "image/tiff").Return(nil)
	f.staging.On("DownloadURL", ctx, mock.Anything).Return("http://staging/dem.tif", nil)
	f.importer.On("StartJob", ctx, testUser, "dem", "http://staging/dem.tif", false).Return(testJob, nil)
	f.importer.On("Describe", ctx, testJob).Return(&domain.ImportItem{LayerName: "dem", ResourceType: domain.ResourceTypeCoverage}, nil)
	f.importer.On("RunToCompletion", ctx, testJob).Return(nil)

	// Act
	resp := f.service.HandleStep(ctx, write(domain.StepSave, nil, uploadedFile("base_file", "dem.tif", []byte("tiff"))))

	// Assert
	require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
	assert.Equal(t, domain.StepFinal, resp.Step)
	session := f.stored(t)
	assert.Equal(t, domain.StepRun, session.CompletedStep)
	assert.True(t, session.ImportRun)
	f.importer.AssertExpectations(t)
}
