package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

const (
	answerTopK               = 3
	defaultGenerationTimeout = 60 * time.Second

	// NoDocumentsAnswer is returned instead of calling the model when retrieval finds nothing.
	NoDocumentsAnswer = "No related documents were found. Please upload documents first."
	// GenericFailureAnswer is shown for failures outside the classified taxonomy.
	GenericFailureAnswer = "Sorry, an error occurred. Please try again."
)

const answerPromptTemplate = `You are a capable assistant that helps users analyse documents.
Answer the request at the end using only the information given in the context below.
If the answer cannot be found in the context, do not make one up. Say that the provided information does not contain the answer.

Request: %s

Context:
%s

Answer:
`

type QueryUseCase struct {
	index             ports.VectorIndex
	generator         ports.AnswerGenerator
	generationTimeout time.Duration
}

func NewQueryUseCase(
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	generationTimeout time.Duration,
) *QueryUseCase {
	if generationTimeout <= 0 {
		generationTimeout = defaultGenerationTimeout
	}
	return &QueryUseCase{
		index:             index,
		generator:         generator,
		generationTimeout: generationTimeout,
	}
}

// GenerateAnswer retrieves the closest chunks and asks the model to answer from them.
// Every returned error is a *domain.ClassifiedError.
func (uc *QueryUseCase) GenerateAnswer(ctx context.Context, question string) (string, error) {
	chunks, err := uc.index.SimilaritySearch(ctx, question, answerTopK)
	if err != nil {
		return "", classifyRetrievalError(err)
	}
	if len(chunks) == 0 {
		slog.InfoContext(ctx, "rag_no_context")
		return NoDocumentsAnswer, nil
	}

	prompt := BuildAnswerPrompt(question, BuildContext(chunks))

	genCtx, cancel := context.WithTimeout(ctx, uc.generationTimeout)
	defer cancel()

	answer, err := uc.generator.GenerateFromPrompt(genCtx, prompt)
	if err != nil {
		classified := ClassifyError(fmt.Errorf("generate answer: %w", err))
		if classified.Kind == domain.KindUnknown && errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			classified = domain.NewClassifiedError(domain.KindTimeout, classified.Technical, err)
		}
		return "", classified
	}
	return answer, nil
}

// Ask is the presentation boundary: failures become a user-safe message.
func (uc *QueryUseCase) Ask(ctx context.Context, question string) domain.AskResult {
	answer, err := uc.GenerateAnswer(ctx, question)
	if err == nil {
		return domain.AskResult{Question: question, Answer: answer}
	}

	var classified *domain.ClassifiedError
	if !errors.As(err, &classified) {
		slog.ErrorContext(ctx, "rag_query_failed", "kind", string(domain.KindUnknown), "error", err.Error())
		return domain.AskResult{
			Question: question,
			Answer:   GenericFailureAnswer,
			IsError:  true,
			Kind:     domain.KindUnknown,
		}
	}
	slog.ErrorContext(ctx, "rag_query_failed",
		"kind", string(classified.Kind),
		"error", classified.Technical,
	)
	return domain.AskResult{
		Question: question,
		Answer:   classified.UserMessage(),
		IsError:  true,
		Kind:     classified.Kind,
	}
}

// BuildContext joins chunk texts in rank order, separated by a blank line.
func BuildContext(chunks []domain.RetrievedChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	return strings.Join(texts, "\n\n")
}

func BuildAnswerPrompt(question, context string) string {
	return fmt.Sprintf(answerPromptTemplate, question, context)
}

// classifyRetrievalError keeps rate limits visible and reports everything else as no documents.
func classifyRetrievalError(err error) *domain.ClassifiedError {
	wrapped := fmt.Errorf("search documents: %w", err)
	classified := ClassifyError(wrapped)
	if classified.Kind == domain.KindRateLimitExceeded {
		return classified
	}
	return domain.NewClassifiedError(domain.KindNoDocumentsFound, wrapped.Error(), err)
}
