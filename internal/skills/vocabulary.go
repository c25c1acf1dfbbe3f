package skills

import (
	"sort"
	"strings"
)

// vocabulary is the list of skills recognised by ExtractKnown.
var vocabulary = []string{
	// machine learning
	"Supervised Learning", "Unsupervised Learning", "Scikit-learn", "TensorFlow", "Keras",
	"PyTorch", "Model Evaluation", "Feature Engineering", "Cross-Validation", "Hyperparameter Tuning",
	"XGBoost", "LightGBM", "Gradient Descent", "Overfitting", "Regularization", "ML Pipelines",

	// data science
	"Python", "R", "SQL", "Pandas", "NumPy", "Matplotlib", "Seaborn", "Jupyter Notebook",
	"Data Cleaning", "Exploratory Data Analysis", "Statistics", "Hypothesis Testing", "Probability",
	"A/B Testing", "Predictive Modeling", "Time Series Analysis", "Business Intelligence",

	// data analysis
	"Excel", "Power BI", "Tableau", "Pivot Tables", "VLOOKUP", "XLOOKUP", "Data Wrangling",
	"Descriptive Statistics", "Report Writing", "Google Sheets", "Data Visualization", "KPI Analysis",
	"SQL Joins", "SQL Aggregations",

	// data engineering
	"PostgreSQL", "MySQL", "MongoDB", "Apache Spark", "Apache Kafka", "ETL", "ELT Pipelines",
	"Airflow", "Data Warehousing", "Redshift", "Snowflake", "BigQuery", "dbt", "AWS S3", "AWS Lambda",
	"AWS Glue", "Azure Data Factory", "Data Lake", "Docker", "Kubernetes",

	// nlp
	"Text Preprocessing", "Tokenization", "Lemmatization", "TF-IDF", "Word2Vec", "FastText",
	"Transformers", "BERT", "RoBERTa", "GPT", "Named Entity Recognition", "NER", "Sentiment Analysis",
	"Text Classification", "Hugging Face Transformers", "spaCy", "NLTK",

	// llm and agents
	"OpenAI GPT", "LLaMA", "Claude", "Gemini", "LangChain", "Prompt Engineering",
	"Retrieval-Augmented Generation", "RAG", "Pinecone", "ChromaDB", "Weaviate", "Vector Embeddings",
	"Agent Frameworks", "LangGraph", "CrewAI", "AutoGen", "Tool Use", "Tool Calling",
	"Memory Management", "Guardrails", "Output Parsing", "Chain of Thought", "ReAct", "Streaming Outputs",
	"Chat Completion APIs",

	// general
	"Go", "Git", "GitHub", "APIs", "REST", "GraphQL", "FastAPI", "Flask", "Linux", "Bash",
	"CI/CD", "Cloud Platforms", "AWS", "Azure", "GCP", "VS Code", "Testing", "Pytest", "Unit Testing",
}

// ExtractKnown scans free text for vocabulary skills.
// Matching is a case-insensitive whole-word search, so "R" does not match
// every word containing the letter r.
func ExtractKnown(text string) []string {
	haystack := " " + wordsOnly(strings.ToLower(text)) + " "

	found := make(map[string]struct{})
	for _, skill := range vocabulary {
		needle := " " + wordsOnly(Normalize(skill)) + " "
		if strings.TrimSpace(needle) == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			found[skill] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for skill := range found {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

const separators = " \t\r\n,;:.!?()[]{}|\"'"

// wordsOnly folds separators that commonly surround skill names into single
// spaces while keeping the characters skill names are built from.
func wordsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case strings.ContainsRune(separators, r):
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
