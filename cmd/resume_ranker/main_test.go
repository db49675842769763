package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-ranker/internal/app"
	"github.com/jonathan/resume-ranker/internal/classifier"
	"github.com/jonathan/resume-ranker/internal/config"
	"github.com/jonathan/resume-ranker/internal/dataset"
	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/server"
	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
	schemafiles "github.com/jonathan/resume-ranker/schemas"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolate points the service at a temporary data directory and clears the
// variables a developer shell might carry.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RANKER_DATA_DIR", dir)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	configPath, logJSON, logDebug = "", false, false
	return dir
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "rank", "estimate-experience", "prepare-dataset", "issue-token", "validate"} {
		assert.Contains(t, names, want)
	}
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("RANKER_PORT", "9000")

	cmd := &cobra.Command{}
	cmd.Flags().Int("port", 8000, "")
	cmd.Flags().String("data-dir", "data", "")

	cfg, logger, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, 9000, cfg.Port)

	require.NoError(t, cmd.Flags().Set("port", "9100"))
	require.NoError(t, cmd.Flags().Set("data-dir", "/srv/ranker"))
	cfg, _, err = loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/srv/ranker", cfg.DataDir)
}

func TestServerWiring(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "5")

	cfg, logger, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)

	srvCfg := serverConfig(cfg)
	assert.Equal(t, 8000, srvCfg.Port)
	require.NotNil(t, srvCfg.RateLimit)
	assert.Equal(t, 5, srvCfg.RateLimit.DefaultLimit)
	require.NotNil(t, srvCfg.URL.Fetch)
	assert.Equal(t, cfg.Fetch.Timeout, srvCfg.URL.Fetch.Timeout)

	a, err := app.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	deps := serverDeps(a)
	assert.Nil(t, deps.Domain)
	assert.Nil(t, deps.Experience)
	require.NotNil(t, deps.Tokens)

	_, err = server.New(srvCfg, deps)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestRunEstimateExperience(t *testing.T) {
	isolate(t)
	estimateText = "Analyst, Jan 2018 - Jan 2020"
	estimateReference = "2024-06-01"
	t.Cleanup(func() { estimateText, estimateReference = "", "" })

	cmd, out := testCommand()
	require.NoError(t, runEstimateExperience(cmd, nil))

	var est experience.Estimate
	require.NoError(t, json.Unmarshal(out.Bytes(), &est))
	assert.Equal(t, 24, est.Months)
	assert.Equal(t, 2.0, est.Years)
	assert.Equal(t, experience.LevelMid, est.Level)
	require.Len(t, est.Ranges, 1)
	assert.Equal(t, "Jan 2018 - Jan 2020", est.Ranges[0].Raw)
}

func TestRunEstimateExperience_File(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "cv.txt", "Lead, Jan 2021 - Present")
	estimateReference = "2024-01-15"
	t.Cleanup(func() { estimateReference = "" })

	cmd, out := testCommand()
	require.NoError(t, runEstimateExperience(cmd, []string{path}))

	var est experience.Estimate
	require.NoError(t, json.Unmarshal(out.Bytes(), &est))
	assert.Equal(t, 36, est.Months)
	assert.Equal(t, experience.LevelMid, est.Level)
}

func TestRunEstimateExperience_Errors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		reference string
		args      []string
		want      string
	}{
		{"nothing to scan", "", "", nil, "either a resume file or --text"},
		{"file and text", "x", "", []string{"cv.txt"}, "not both"},
		{"bad reference", "x", "June 2024", nil, "invalid --reference-date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimateText, estimateReference = tt.text, tt.reference
			t.Cleanup(func() { estimateText, estimateReference = "", "" })

			cmd, _ := testCommand()
			err := runEstimateExperience(cmd, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunPrepareDataset(t *testing.T) {
	isolate(t)
	in := writeFile(t, t.TempDir(), "resumes.json", `[
		{"text": "Data Scientist Jan 2015 - Jan 2022 python", "domain": "Data Science"},
		{"text": "Web developer 2020 - 2023 javascript", "domain": "Web"}
	]`)
	out := filepath.Join(t.TempDir(), "artifacts")

	prepareInput, prepareOut = in, out
	prepareNumWords, prepareOOVToken, prepareReference = classifier.DefaultNumWords, classifier.DefaultOOVToken, "2024-06-01"
	t.Cleanup(func() { prepareInput, prepareOut, prepareReference = "", "", "" })

	cmd, stdout := testCommand()
	require.NoError(t, runPrepareDataset(cmd, nil))

	var summary dataset.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, []string{"Data Science", "Web"}, summary.Domains)
	assert.Equal(t, 1, summary.LevelCounts["Senior"])
	assert.Equal(t, 1, summary.LevelCounts["Mid"])

	for _, name := range []string{dataset.LabeledFile, dataset.TokenizerFile, dataset.DomainEncoderFile, dataset.ExperienceEncoderFile} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestRunPrepareDataset_InvalidInput(t *testing.T) {
	isolate(t)
	prepareInput = writeFile(t, t.TempDir(), "resumes.json", `[{"text": "no domain"}]`)
	prepareOut = t.TempDir()
	prepareReference = ""
	t.Cleanup(func() { prepareInput, prepareOut = "", "" })

	cmd, _ := testCommand()
	assert.Error(t, runPrepareDataset(cmd, nil))
}

func TestRunIssueToken(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	tokenSubject = "recruiter"
	t.Cleanup(func() { tokenSubject = "" })

	cmd, out := testCommand()
	require.NoError(t, runIssueToken(cmd, nil))

	token := strings.TrimSpace(out.String())
	subject, err := server.NewTokenService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 24}).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "recruiter", subject)
}

func TestRunIssueToken_AuthDisabled(t *testing.T) {
	isolate(t)
	tokenSubject = "recruiter"
	t.Cleanup(func() { tokenSubject = "" })

	cmd, _ := testCommand()
	err := runIssueToken(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication is disabled")
}

func TestRunRank(t *testing.T) {
	dataDir := isolate(t)
	files := t.TempDir()
	rankJDFile = writeFile(t, files, "jd.txt", "python data engineer")
	rankXLSX = filepath.Join(files, "ranking.xlsx")
	rankSave, rankVerbose, rankProgress = true, true, true
	t.Cleanup(func() { rankJDFile, rankXLSX, rankSave, rankVerbose, rankProgress = "", "", false, false, false })

	resumes := []string{
		writeFile(t, files, "florist.txt", "florist"),
		writeFile(t, files, "engineer.txt", "python data engineer with spark"),
	}

	cmd, out := testCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	require.NoError(t, runRank(cmd, resumes))
	assert.Contains(t, stderr.String(), "RANKED RESUMES")
	assert.Contains(t, stderr.String(), "Scoring resumes")

	var resp types.UploadResumesResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "engineer.txt", resp.Results[0].Filename)
	assert.Equal(t, "florist.txt", resp.Results[1].Filename)
	assert.Greater(t, resp.Results[0].FinalScore, resp.Results[1].FinalScore)
	assert.FileExists(t, rankXLSX)

	st, err := store.NewFileStore(dataDir, nil)
	require.NoError(t, err)
	stored, err := st.LoadRanking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resp.RunID, stored.RunID)

	jd, err := st.LoadJobDescription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python data engineer", jd)
}

func TestRunRank_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		url  string
		want string
	}{
		{"no job description", "", "", "either --jd or --jd-url"},
		{"both sources", "jd.txt", "https://example.com/job", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rankJDFile, rankJDURL = tt.file, tt.url
			t.Cleanup(func() { rankJDFile, rankJDURL = "", "" })

			cmd, _ := testCommand()
			err := runRank(cmd, []string{"cv.pdf"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunRank_MissingResume(t *testing.T) {
	isolate(t)
	rankJDFile = writeFile(t, t.TempDir(), "jd.txt", "python")
	t.Cleanup(func() { rankJDFile = "" })

	cmd, _ := testCommand()
	err := runRank(cmd, []string{filepath.Join(t.TempDir(), "missing.pdf")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read resume")
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "results.json", `[{
		"resume_filename": "cv.pdf", "skill_match": 60, "experience_score": 50,
		"soft_skills_score": 40, "adaptability_score": 30, "final_ats_score": 50,
		"bilstm_predicted_class": 1, "bilstm_prediction_probability": 0.55, "bilstm_label": "Matched"
	}]`)
	invalid := writeFile(t, dir, "broken.json", `[{"resume_filename": "cv.pdf", "bilstm_label": "Maybe"}]`)

	schemaData, err := schemafiles.FS.ReadFile(schemafiles.RankedResults)
	require.NoError(t, err)
	schemaPath := writeFile(t, dir, "ranked.schema.json", string(schemaData))

	tests := []struct {
		name    string
		schema  string
		input   string
		wantErr string
	}{
		{"bundled schema", schemafiles.RankedResults, valid, ""},
		{"schema file", schemaPath, valid, ""},
		{"bundled schema rejects", schemafiles.RankedResults, invalid, "is invalid"},
		{"schema file rejects", schemaPath, invalid, "is invalid"},
		{"unknown schema", "nope.schema.json", valid, "neither a file nor a bundled schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validateSchema, validateInput = tt.schema, tt.input
			t.Cleanup(func() { validateSchema, validateInput = "", "" })

			cmd, out := testCommand()
			err := runValidate(cmd, nil)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Contains(t, out.String(), "is valid")
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
