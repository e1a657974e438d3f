package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ravebox/discover/internal/category"
	"ravebox/discover/internal/discover"
	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/domain/task"
	"ravebox/discover/internal/queue"
	"ravebox/discover/internal/repository"
	"ravebox/discover/internal/retrieval"
	"ravebox/discover/internal/state"
	"ravebox/discover/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxDiscoverRetries bounds how often a failed discover term is retried
const maxDiscoverRetries = 5

const defaultMinIdleTime = 2 * time.Minute

// Service indexes discover lists: it fetches the discover groups of every
// top-level category, queues the flattened lists, and stores them from
// queue workers.
type Service struct {
	repository  repository.ReviewListRepository
	client      retrieval.DiscoverAPI
	queue       queue.Queue
	progress    state.ProgressManager
	store       *store.Store
	categories  []domain.Category
	groupName   string
	minIdleTime time.Duration
}

func NewService(
	repository repository.ReviewListRepository,
	client retrieval.DiscoverAPI,
	queue queue.Queue,
	progress state.ProgressManager,
	st *store.Store,
	categories []domain.Category,
	groupName string,
	minIdleTime time.Duration,
) *Service {
	if minIdleTime <= 0 {
		minIdleTime = defaultMinIdleTime
	}
	return &Service{
		repository:  repository,
		client:      client,
		queue:       queue,
		progress:    progress,
		store:       st,
		categories:  categories,
		groupName:   groupName,
		minIdleTime: minIdleTime,
	}
}

// IndexAll indexes every top-level category concurrently, at most
// maxWorkers at a time. A category that fails is queued for retry and does
// not stop the others.
func (s *Service) IndexAll(ctx context.Context, maxWorkers int) error {
	terms := category.TopLevelCategories(s.categories)

	errGroup := new(errgroup.Group)
	if maxWorkers > 0 {
		errGroup.SetLimit(maxWorkers)
	}

	for _, term := range terms {
		errGroup.Go(func() error {
			return s.indexTerm(ctx, term)
		})
	}

	if err := errGroup.Wait(); err != nil {
		return err
	}

	log.Infof("✅ Completed all %d categories", len(terms))
	return nil
}

func (s *Service) indexTerm(ctx context.Context, term string) error {
	loadingKey := "discover:" + term
	s.dispatch(store.SetLoading{Key: loadingKey, Loading: true})
	defer s.dispatch(store.SetLoading{Key: loadingKey, Loading: false})

	lastIndexed, err := s.progress.GetLastIndexed(ctx, term)
	if err != nil {
		log.Errorf("Failed to get last indexed time: %v", err)
		return err
	}
	if !lastIndexed.IsZero() {
		log.Infof("🔄 Re-indexing %s, last indexed %s", term, lastIndexed.Format(time.RFC3339))
	}

	log.Infof("🔄 Processing category: %s", term)

	result := s.retrieveGroups(ctx, term)
	switch result.Status {
	case retrieval.Success:
		return s.enqueueLists(ctx, term, result.Value)

	case retrieval.NotFound:
		log.Warnf("⚠️ No discover groups for %s", term)
		return nil

	case retrieval.Failed:
		retryTask := &task.DiscoverRetryTask{
			Term:       term,
			RetryCount: 0,
			Error:      result.Err.Error(),
		}
		if _, addErr := s.queue.AddTask(ctx, retryTask); addErr != nil {
			log.Errorf("❌ Failed to add %s to retry queue: %v", term, addErr)
			return addErr
		}
		log.Warnf("🔄 Added %s to retry queue due to fetch failure: %v", term, result.Err)
		return nil

	default:
		return fmt.Errorf("discover groups for %s: %w", term, result.Err)
	}
}

// retrieveGroups runs one discover request to completion
func (s *Service) retrieveGroups(ctx context.Context, term string) retrieval.State[string, []domain.DiscoverGroup] {
	r := retrieval.NewDiscoverGroups(s.client, s.store)
	defer r.Close()

	r.Retrieve(ctx, term)
	return r.Wait(ctx)
}

func (s *Service) enqueueLists(ctx context.Context, term string, groups []domain.DiscoverGroup) error {
	lists := discover.CreateReviewLists(groups)
	for _, list := range lists {
		if _, err := s.queue.AddTask(ctx, &task.ReviewListTask{Term: term, List: list}); err != nil {
			log.Errorf("❌ Failed to add task for %s: %v", list.ID, err)
			return err
		}
	}

	if err := s.progress.SetLastIndexed(ctx, term, time.Now()); err != nil {
		log.Warnf("⚠️ Failed to record progress for %s: %v", term, err)
	}

	log.Infof("✅ Completed %s: %d lists", term, len(lists))
	return nil
}

func (s *Service) dispatch(action store.Action) {
	if s.store != nil {
		s.store.Dispatch(action)
	}
}

// RunWorkers consumes every task stream until ctx is done
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, max(1, numWorkers), queue.StreamName(task.TypeReviewList), "main")
	s.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), queue.StreamName(task.TypeDiscoverRetry), "retry")
	s.runWorkersForStream(ctx, &wg, 1, queue.StreamName(task.TypeMediaFailure), "media")

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	// Auto-claimer for this stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%s-%s", workerType, uuid.NewString())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimedMessages), workerType)
					for _, msg := range claimedMessages {
						if err := s.processMessage(ctx, &msg); err != nil {
							log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

// processMessage handles one stream message and acknowledges it. A message
// whose handling failed is left pending for the auto-claimer.
func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values[queue.FieldTaskType].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values[queue.FieldTaskData].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	switch taskType {
	case task.TypeReviewList:
		listTask, err := task.UnmarshalTask[*task.ReviewListTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal review list task data: %w", err)
		}

		if err := s.repository.SaveReviewList(ctx, listTask.Term, listTask.List); err != nil {
			return fmt.Errorf("failed to store list %s: %w", listTask.List.ID, err)
		}
		log.Debugf("Stored list %s with %d reviews", listTask.List.ID, len(listTask.List.Reviews))

	case task.TypeDiscoverRetry:
		retryTask, err := task.UnmarshalTask[*task.DiscoverRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal retry task data: %w", err)
		}

		if err := s.retryDiscover(ctx, retryTask); err != nil {
			return fmt.Errorf("failed to retry discover: %w", err)
		}

	case task.TypeMediaFailure:
		failure, err := task.UnmarshalTask[*task.MediaFailureTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal media failure task data: %w", err)
		}

		if err := s.repository.SaveMediaFailure(ctx, failure); err != nil {
			return err
		}
		log.Warnf("📼 Recorded failed removal of %s/%s: %s", failure.Bucket, failure.Key, failure.Error)

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	streamName := queue.StreamName(taskType)
	if err := s.queue.AckTask(ctx, streamName, s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (s *Service) retryDiscover(ctx context.Context, retryTask *task.DiscoverRetryTask) error {
	retryTask.RetryCount++

	if retryTask.RetryCount > maxDiscoverRetries {
		log.Errorf("❌ Giving up on %s after %d attempts: %s", retryTask.Term, maxDiscoverRetries, retryTask.Error)
		return nil
	}

	log.Infof("🔄 Retrying %s (attempt %d)", retryTask.Term, retryTask.RetryCount)

	result := s.retrieveGroups(ctx, retryTask.Term)
	switch result.Status {
	case retrieval.Success:
		if err := s.enqueueLists(ctx, retryTask.Term, result.Value); err != nil {
			return err
		}
		log.Infof("✅ Successfully recovered %s after %d attempts", retryTask.Term, retryTask.RetryCount)
		return nil

	case retrieval.NotFound:
		log.Warnf("⚠️ No discover groups for %s on retry", retryTask.Term)
		return nil

	case retrieval.Failed:
		newRetryTask := &task.DiscoverRetryTask{
			Term:       retryTask.Term,
			RetryCount: retryTask.RetryCount,
			Error:      result.Err.Error(),
		}
		if _, addErr := s.queue.AddTask(ctx, newRetryTask); addErr != nil {
			log.Errorf("❌ Failed to re-add retry task for %s: %v", retryTask.Term, addErr)
			return addErr
		}
		log.Warnf("🔄 %s failed again, will retry (attempt %d): %v", retryTask.Term, retryTask.RetryCount, result.Err)
		return nil

	default:
		return fmt.Errorf("discover groups for %s: %w", retryTask.Term, result.Err)
	}
}
