package convert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/events"
	ioutils "github.com/handiism/audiotagtools/internal/io"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/playlist"
	"github.com/handiism/audiotagtools/internal/reorganize"
	"github.com/handiism/audiotagtools/internal/scan"
	"github.com/handiism/audiotagtools/internal/tagstore"
	"golang.org/x/sync/errgroup"
)

// SourceExtension selects the files that are converted.
const SourceExtension = "flac"

// Manager coordinates directory conversions.
type Manager struct {
	events.Emitter

	settings      *config.Settings
	encoder       codec.Encoder
	failurePolicy FailurePolicy
	placement     reorganize.Policy
	playlist      *playlist.Creator
	imageService  *ioutils.ImageService
	recorder      reorganize.StepRecorder

	dirs           []model.MusicDirectory
	totalFiles     int32
	convertedFiles int32
	failedFiles    int32
	mu             sync.RWMutex
}

// NewManager creates a new conversion Manager.
func NewManager(settings *config.Settings, encoder codec.Encoder, sink events.Sink) (*Manager, error) {
	policy, err := ParseFailurePolicy(settings.Convert.FailurePolicy)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		Emitter:       events.Emitter{Sink: sink},
		settings:      settings,
		encoder:       encoder,
		failurePolicy: policy,
		placement: reorganize.Policy{
			InPlace:         settings.Convert.InPlace,
			DeleteOriginals: settings.Convert.DeleteOriginals,
		}.Normalize(),
		imageService: ioutils.NewImageService(),
	}
	if settings.Convert.CreatePlaylist {
		format, err := playlist.ParseFormat(settings.Convert.PlaylistFormat)
		if err != nil {
			return nil, err
		}
		m.playlist = playlist.NewCreator(format, settings.Convert.M3UExtended)
	}
	return m, nil
}

// SetRecorder records every reorganize step, typically to the journal.
func (m *Manager) SetRecorder(rec reorganize.StepRecorder) {
	m.recorder = rec
}

// Initialize scans root for directories holding FLAC files.
func (m *Manager) Initialize(ctx context.Context, root string) error {
	m.Emitf(events.LevelVerbose, "Scanning %s", root)
	dirs, err := scan.FindMusicDirs(ctx, root, scan.Extension(SourceExtension))
	if err != nil {
		return err
	}

	var total int32
	for _, dir := range dirs {
		total += int32(len(dir.Files))
		m.Emit(events.Event{
			Message: fmt.Sprintf("Found %s (%d files)", filepath.Base(dir.Path), len(dir.Files)),
			Level:   events.LevelInfo,
			Dir:     dir.Path,
		})
	}

	m.mu.Lock()
	m.dirs = dirs
	m.mu.Unlock()
	atomic.StoreInt32(&m.totalFiles, total)
	atomic.StoreInt32(&m.convertedFiles, 0)
	atomic.StoreInt32(&m.failedFiles, 0)

	if len(dirs) == 0 {
		m.Emitf(events.LevelWarning, "No %s files found under %s", SourceExtension, root)
	}
	return nil
}

// Directories returns the directories found by Initialize.
func (m *Manager) Directories() []model.MusicDirectory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.MusicDirectory(nil), m.dirs...)
}

// GetProgress returns the number of converted and failed files and the
// total.
func (m *Manager) GetProgress() (converted, failed, total int32) {
	return atomic.LoadInt32(&m.convertedFiles), atomic.LoadInt32(&m.failedFiles), atomic.LoadInt32(&m.totalFiles)
}

// Start converts every initialized directory in order. It stops between
// directories when ctx is done and returns the results so far.
func (m *Manager) Start(ctx context.Context) ([]DirectoryResult, error) {
	executor := reorganize.NewExecutor(m.settings.LockPath(), m.recorder, m.Sink)

	dirs := m.Directories()
	results := make([]DirectoryResult, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, m.convertDirectory(ctx, executor, dir))
	}
	return results, ctx.Err()
}

func (m *Manager) convertDirectory(ctx context.Context, executor *reorganize.Executor, dir model.MusicDirectory) DirectoryResult {
	staging := model.StagingPath(dir.Path)
	res := DirectoryResult{Dir: dir.Path, Output: staging}

	fail := func(err error) DirectoryResult {
		res.Err = err
		m.Emit(events.Event{Message: fmt.Sprintf("Error converting %s: %v", filepath.Base(dir.Path), err), Level: events.LevelError, Dir: dir.Path, Err: err})
		return res
	}

	if err := ioutils.EnsureDir(staging); err != nil {
		return fail(fmt.Errorf("create staging: %w", err))
	}

	jobs := m.jobs(dir, staging)
	assets := make([]*model.AudioAsset, len(jobs))
	var (
		mu       sync.Mutex
		failures []*model.TranscodeError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.Convert.Workers))
	for i, job := range jobs {
		i, job := i, job // per-iteration copies for go < 1.22 loop semantics
		g.Go(func() error {
			// Abort cancels gctx; files not yet started are left alone.
			if err := gctx.Err(); err != nil {
				return nil
			}
			asset, err := m.convertFile(gctx, dir, job)
			if err == nil {
				assets[i] = asset
				atomic.AddInt32(&m.convertedFiles, 1)
				return nil
			}
			var terr *model.TranscodeError
			if !errors.As(err, &terr) {
				return err
			}
			atomic.AddInt32(&m.failedFiles, 1)
			mu.Lock()
			failures = append(failures, terr)
			mu.Unlock()
			m.Emit(events.Event{Message: fmt.Sprintf("Failed to convert %s", filepath.Base(job.Source)), Level: events.LevelError, Dir: dir.Path, File: filepath.Base(job.Source), Err: terr})
			if m.failurePolicy == PolicyAbort {
				return terr
			}
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Source < failures[j].Source })
	res.Failures = failures
	for i, asset := range assets {
		if asset != nil {
			res.Converted = append(res.Converted, filepath.Base(jobs[i].Output))
		}
	}

	if waitErr != nil {
		return fail(waitErr)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	m.writeExtras(ctx, dir, staging, assets)

	if len(failures) > 0 {
		res.Degraded = true
		m.Emit(events.Event{
			Message: fmt.Sprintf("Finished %s, %d of %d files failed; keeping %s", filepath.Base(dir.Path), len(failures), len(jobs), filepath.Base(staging)),
			Level:   events.LevelWarning,
			Dir:     dir.Path,
		})
		return res
	}

	plan, err := reorganize.NewPlan(dir.Path, dir.Files, m.placement)
	if err != nil {
		return fail(err)
	}
	if err := executor.Execute(ctx, plan); err != nil {
		return fail(err)
	}
	if !plan.Retains() {
		res.Output = dir.Path
		res.Archive = plan.Archive
	}
	m.Emit(events.Event{Message: fmt.Sprintf("Successfully converted %s", filepath.Base(dir.Path)), Level: events.LevelSuccess, Dir: dir.Path})
	return res
}

func (m *Manager) jobs(dir model.MusicDirectory, staging string) []model.ConversionJob {
	bitrate := codec.ResolveBitrate(m.settings.Convert.Bitrate)
	jobs := make([]model.ConversionJob, len(dir.Files))
	for i, name := range dir.Files {
		jobs[i] = model.ConversionJob{
			Source:  filepath.Join(dir.Path, name),
			Output:  filepath.Join(staging, model.ReplaceExt(name, codec.MP3.Extension)),
			Codec:   codec.MP3.Name,
			Bitrate: bitrate,
		}
	}
	return jobs
}

// convertFile retries a job and wraps a final failure in a
// *model.TranscodeError. Cancellation is returned as is.
func (m *Manager) convertFile(ctx context.Context, dir model.MusicDirectory, job model.ConversionJob) (*model.AudioAsset, error) {
	name := filepath.Base(job.Source)
	var err error
	attempts := 0
	for tries := 0; tries <= m.settings.Convert.MaxRetries; tries++ {
		attempts++
		var asset *model.AudioAsset
		asset, err = m.transcode(ctx, job)
		if err == nil {
			m.Emit(events.Event{Message: fmt.Sprintf("Converted: %s", name), Level: events.LevelVerbose, Dir: dir.Path, File: name})
			return asset, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if tries < m.settings.Convert.MaxRetries {
			m.Emit(events.Event{
				Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.settings.Convert.MaxRetries, name),
				Level:   events.LevelWarning,
				Dir:     dir.Path,
				File:    name,
				Err:     err,
			})
			m.waitForRetry(ctx, tries)
		}
	}
	return nil, &model.TranscodeError{Source: job.Source, Attempts: attempts, Err: err}
}

// transcode reads the source tags, encodes and writes the tags into the
// output.
func (m *Manager) transcode(ctx context.Context, job model.ConversionJob) (*model.AudioAsset, error) {
	asset, err := tagstore.ReadAsset(job.Source)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	req := codec.Request{
		Source:  job.Source,
		Output:  job.Output,
		Codec:   codec.MP3,
		Bitrate: job.Bitrate,
	}
	if err := m.encoder.Encode(ctx, req); err != nil {
		return nil, err
	}
	if err := tagstore.Transfer(asset, job.Output); err != nil {
		_ = os.Remove(job.Output)
		return nil, err
	}
	return asset, nil
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.Convert.RetryCooldown * math.Pow(m.settings.Convert.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

// writeExtras writes the playlist and folder art into staging. Failures
// are reported as warnings; neither blocks reorganization.
func (m *Manager) writeExtras(ctx context.Context, dir model.MusicDirectory, staging string, assets []*model.AudioAsset) {
	if m.playlist != nil {
		if err := m.writePlaylist(ctx, dir, staging, assets); err != nil {
			m.Emit(events.Event{Message: "Failed to write playlist", Level: events.LevelWarning, Dir: dir.Path, Err: err})
		}
	}
	if m.settings.Convert.SaveFolderArt {
		if err := m.writeFolderArt(ctx, dir, staging, assets); err != nil {
			m.Emit(events.Event{Message: "Failed to write folder art", Level: events.LevelWarning, Dir: dir.Path, Err: err})
		}
	}
}

func (m *Manager) writePlaylist(ctx context.Context, dir model.MusicDirectory, staging string, assets []*model.AudioAsset) error {
	title := filepath.Base(dir.Path)
	name := ioutils.SanitizeFileName(title) + m.playlist.Format().Extension()
	if ioutils.Exists(filepath.Join(dir.Path, name)) {
		m.Emitf(events.LevelVerbose, "Playlist %s already exists", name)
		return nil
	}

	var entries []playlist.Entry
	for i, asset := range assets {
		if asset == nil {
			continue
		}
		entries = append(entries, playlist.Entry{
			File:   model.ReplaceExt(dir.Files[i], codec.MP3.Extension),
			Title:  asset.Tags[model.FieldTitle],
			Artist: asset.Tags[model.FieldArtist],
			Album:  asset.Tags[model.FieldAlbum],
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return ioutils.WriteFile(ctx, filepath.Join(staging, name), []byte(m.playlist.Create(title, entries)))
}

func (m *Manager) writeFolderArt(ctx context.Context, dir model.MusicDirectory, staging string, assets []*model.AudioAsset) error {
	name := m.settings.Convert.FolderArtName + ".jpg"
	if ioutils.Exists(filepath.Join(dir.Path, name)) {
		return nil
	}
	for _, asset := range assets {
		if asset == nil {
			continue
		}
		art, ok := asset.FirstArtwork()
		if !ok {
			continue
		}
		size := m.settings.Convert.FolderArtMaxSize
		data, err := m.imageService.ResizeImage(ctx, art.Data, size, size)
		if err != nil {
			return err
		}
		return ioutils.WriteFile(ctx, filepath.Join(staging, name), data)
	}
	return nil
}
