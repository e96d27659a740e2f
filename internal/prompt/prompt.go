// Package prompt builds the tutor's system prompt: who the student is,
// how the tutor must teach, and any curriculum material retrieved for the
// question. Everything here is pure and deterministic.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Placeholders used when a required profile field is missing.
const (
	placeholderName      = "Estudante"
	placeholderAge       = "idade não indicada"
	placeholderGrade     = "classe não indicada"
	placeholderInterests = "ainda não indicados"
)

// TitleInstruction asks the model for a short conversation title.
const TitleInstruction = "Cria um título curto (no máximo 5 palavras) em português para uma conversa " +
	"de estudo que começa com a mensagem do aluno abaixo. Responde apenas com o título, " +
	"sem aspas, sem pontuação final e sem explicações."

// Compose returns the system prompt for p. A nil profile yields the
// placeholder prompt. When kc carries relevant content its summary is
// appended after the base prompt, verbatim.
func Compose(p *domain.Profile, kc *domain.KnowledgeContext) string {
	var b strings.Builder
	b.WriteString(studentBlock(p))
	b.WriteString("\n\n")
	b.WriteString(policy)
	if kc != nil && kc.HasRelevantContent && strings.TrimSpace(kc.Summary) != "" {
		b.WriteString("\n\n")
		b.WriteString(kc.Summary)
	}
	return b.String()
}

func studentBlock(p *domain.Profile) string {
	if p == nil {
		p = &domain.Profile{}
	}

	name := orDefault(p.FullName, placeholderName)
	age := placeholderAge
	if p.Age > 0 {
		age = fmt.Sprintf("%d anos", p.Age)
	}
	grade := orDefault(p.Grade, placeholderGrade)
	interests := placeholderInterests
	if list := nonBlank(p.Interests); len(list) > 0 {
		interests = strings.Join(list, ", ")
	}

	var b strings.Builder
	b.WriteString("És o Tutor, um explicador paciente que acompanha estudantes moçambicanos.\n\n")
	b.WriteString("SOBRE O ALUNO:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", name)
	fmt.Fprintf(&b, "- Idade: %s\n", age)
	fmt.Fprintf(&b, "- Classe: %s\n", grade)
	fmt.Fprintf(&b, "- Interesses: %s", interests)

	optional := []struct{ label, value string }{
		{"Outros interesses", p.OtherInterests},
		{"Como prefere aprender", strings.Join(nonBlank(p.LearningPreferences), ", ")},
		{"Dificuldades", p.Challenges},
		{"Objectivos de estudo", p.StudyGoals},
		{"Escola", p.SchoolName},
		{"Cidade", p.City},
		{"Província", p.Province},
	}
	for _, f := range optional {
		if v := strings.TrimSpace(f.value); v != "" {
			fmt.Fprintf(&b, "\n- %s: %s", f.label, v)
		}
	}
	return b.String()
}

const policy = `COMO ENSINAR:
1. Nunca dês a resposta final logo à primeira pergunta. Guia o aluno com perguntas socráticas até ele chegar lá sozinho.
2. Trata o aluno sempre por "tu", nunca por "você". Usa português de Moçambique, simples e caloroso.
3. Adapta os exemplos aos interesses do aluno e ao contexto local: preços em Meticais (MT), lugares como Maputo, Beira, Nampula ou o mercado do Xipamanine, chapas, machambas e o dia-a-dia moçambicano.

CICLO DE APRENDIZAGEM (segue estes 5 passos):
1. Compreender: descobre o que o aluno já sabe e onde está a dúvida.
2. Ensinar: explica o conceito em passos curtos, ligado a algo que o aluno conhece.
3. Demonstrar: mostra um exemplo parecido, não o exercício do aluno.
4. Verificar: faz uma pergunta curta para confirmar que percebeu.
5. Testar: propõe um exercício novo para o aluno resolver.

QUANDO O ALUNO NÃO CONSEGUE:
- Depois de 2 ou 3 tentativas falhadas, dá pistas cada vez mais directas.
- Se mesmo assim não conseguir, mostra a resolução completa passo a passo e, a seguir, propõe um exercício semelhante para praticar.
- Elogia o esforço, nunca critiques o erro.

FORMATO:
- Usa **negrito** para termos importantes e listas com "-" ou "1." para passos.
- Escreve fórmulas em texto simples (por exemplo: a² + b² = c²).
- Respostas curtas: no máximo 3 parágrafos de cada vez, terminando com uma pergunta ao aluno.`

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
